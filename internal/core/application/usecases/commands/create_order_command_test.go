package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand(t *testing.T) {
	customer, _ := order.NewCustomer(nil, "Ada", "ada@example.com", "Street 1", 1)
	product, _ := order.NewProduct("sku-1", "Lamp", 10, "")

	t.Run("should create command", func(t *testing.T) {
		id := kernel.NewUUID()

		cmd, err := commands.NewCreateOrderCommand(id, customer, product)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.True(t, cmd.OrderID().IsEqual(id))
		assert.Equal(t, customer, cmd.Customer())
		assert.Equal(t, product, cmd.Product())
	})

	t.Run("should join missing values", func(t *testing.T) {
		_, err := commands.NewCreateOrderCommand(kernel.UUID{}, order.Customer{}, order.Product{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "customer")
		assert.Contains(t, err.Error(), "product")
	})

	t.Run("should reject zero value", func(t *testing.T) {
		var cmd commands.CreateOrderCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)
	})
}
