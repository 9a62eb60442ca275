package memory_test

import (
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store   *memory.Store
	factory *memory.UnitOfWorkFactory
	reader  *memory.OrderReader
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.factory = memory.NewUnitOfWorkFactory(suite.store)
	suite.reader = memory.NewOrderReader(suite.store)
}

func (suite *StoreTestSuite) newOrder(createdAt time.Time, customerID *kernel.UUID) *order.Order {
	customer, err := order.NewCustomer(customerID, "Ada", "ada@example.com", "1 Main St", 1)
	suite.Require().NoError(err)
	product, err := order.NewProduct("sku-1", "Lamp", 19.9, "")
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), customer, product, createdAt)
	suite.Require().NoError(err)
	return o
}

func (suite *StoreTestSuite) addOrder(o *order.Order) {
	ctx := suite.T().Context()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *StoreTestSuite) addAgent(name, email string) *agent.Agent {
	ctx := suite.T().Context()
	a, err := agent.NewAgent(kernel.NewUUID(), agent.Profile{
		Name: name, Email: email, Address: "Depot", Vehicle: "Bike", LicenseNumber: "L-1",
	}, "hash", time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().AgentRepository().Add(ctx, a))
	return a
}

func (suite *StoreTestSuite) TestAddAndGet() {
	ctx := suite.T().Context()
	o := suite.newOrder(time.Now(), nil)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound, "uncommitted writes are not visible to others")

	suite.Require().NoError(uow.Commit(ctx))
	events := uow.DomainEvents()
	suite.Require().Len(events, 1)
	suite.Equal("order.created", events[0].EventName())
	suite.Empty(uow.DomainEvents(), "events are drained once")

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.Snapshot(), stored.Snapshot())
	suite.False(stored.IsChanged())
}

func (suite *StoreTestSuite) TestUpdate_ConditionalWrite() {
	ctx := suite.T().Context()
	o := suite.newOrder(time.Now(), nil)
	suite.addOrder(o)

	first, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	second, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(first.OverrideStatus(order.Accepted, time.Now()))
	suite.Require().NoError(second.OverrideStatus(order.Delivered, time.Now()))

	suite.Require().NoError(suite.factory.Create().OrderRepository().Update(ctx, first))
	err = suite.factory.Create().OrderRepository().Update(ctx, second)
	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Accepted, stored.Status())
	suite.Equal(int64(2), stored.Version())
}

func (suite *StoreTestSuite) TestCommit_ConflictDiscardsEverything() {
	ctx := suite.T().Context()
	o := suite.newOrder(time.Now(), nil)
	suite.addOrder(o)

	loser := suite.factory.Create()
	suite.Require().NoError(loser.Begin(ctx))
	stale, err := loser.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(stale.OverrideStatus(order.Delivered, time.Now()))
	suite.Require().NoError(loser.OrderRepository().Update(ctx, stale))

	winner, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(winner.OverrideStatus(order.Accepted, time.Now()))
	suite.Require().NoError(suite.factory.Create().OrderRepository().Update(ctx, winner))

	suite.Require().ErrorIs(loser.Commit(ctx), errs.ErrVersionIsInvalid)
	suite.Empty(loser.DomainEvents())

	view, err := suite.reader.GetOrder(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Accepted, view.Status)
}

func (suite *StoreTestSuite) TestRollback_DropsWrites() {
	ctx := suite.T().Context()
	o := suite.newOrder(time.Now(), nil)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Empty(uow.DomainEvents())
	suite.Require().ErrorIs(uow.Rollback(ctx), memory.ErrNoTransaction)
	_, err := suite.reader.GetOrder(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *StoreTestSuite) TestAgents_UniqueEmail() {
	ctx := suite.T().Context()
	a := suite.addAgent("Sam", "Sam@Example.com")

	found, err := suite.factory.Create().AgentRepository().GetByEmail(ctx, "sam@example.com")
	suite.Require().NoError(err)
	suite.True(found.ID().IsEqual(a.ID()))

	dup, err := agent.NewAgent(kernel.NewUUID(), agent.Profile{
		Name: "Other", Email: "sam@example.com", Address: "Depot", Vehicle: "Van", LicenseNumber: "L-2",
	}, "hash", time.Now())
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.AgentRepository().Add(ctx, dup))
	suite.Require().ErrorIs(uow.Commit(ctx), agent.ErrEmailAlreadyRegistered)

	_, err = suite.factory.Create().AgentRepository().Get(ctx, dup.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *StoreTestSuite) TestReader_FiltersAndOrdering() {
	ctx := suite.T().Context()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sam := suite.addAgent("Sam", "sam@example.com")
	kim := suite.addAgent("Kim", "kim@example.com")
	customer := kernel.NewUUID()

	oldest := suite.newOrder(base, &customer)
	mine := suite.newOrder(base.Add(time.Minute), nil)
	theirs := suite.newOrder(base.Add(2*time.Minute), &customer)
	for _, o := range []*order.Order{oldest, mine, theirs} {
		suite.addOrder(o)
	}

	for _, assign := range []struct {
		id    kernel.UUID
		agent kernel.UUID
	}{{mine.ID(), sam.ID()}, {theirs.ID(), kim.ID()}} {
		o, err := suite.factory.Create().OrderRepository().Get(ctx, assign.id)
		suite.Require().NoError(err)
		suite.Require().NoError(o.DirectAccept(assign.agent, time.Now()))
		suite.Require().NoError(suite.factory.Create().OrderRepository().Update(ctx, o))
	}

	all, err := suite.reader.ListOrders(ctx, ports.OrderFilter{})
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{theirs.ID(), mine.ID(), oldest.ID()}, ids(all))
	suite.Equal("Kim", all[0].AssignedAgentName)
	suite.Equal("Sam", all[1].AssignedAgentName)
	suite.Empty(all[2].AssignedAgentName)

	samID := sam.ID()
	visible, err := suite.reader.ListOrders(ctx, ports.OrderFilter{VisibleTo: &samID})
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{mine.ID(), oldest.ID()}, ids(visible))

	byCustomer, err := suite.reader.ListOrders(ctx, ports.OrderFilter{CustomerID: &customer})
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{theirs.ID(), oldest.ID()}, ids(byCustomer))

	counts, err := suite.reader.CountByStatus(ctx)
	suite.Require().NoError(err)
	suite.Equal(map[order.Status]int{order.Pending: 1, order.Accepted: 2}, counts)
}

func TestUnitOfWork_CommitWithoutBegin(t *testing.T) {
	uow := memory.NewUnitOfWorkFactory(memory.NewStore()).Create()

	err := uow.Commit(t.Context())

	require.ErrorIs(t, err, memory.ErrNoTransaction)
	assert.NoError(t, memory.NewStore().Ping(t.Context()))
}

func ids(views []ports.OrderView) []kernel.UUID {
	out := make([]kernel.UUID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
