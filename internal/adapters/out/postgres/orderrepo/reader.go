package orderrepo

import (
	"context"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

const selectOrderViews = `
	SELECT
		o.*,
		COALESCE(a.name, '') AS assigned_agent_name
	FROM orders o
	LEFT JOIN agents a ON a.id = o.assigned_agent_id`

// GormOrderReader implements ports.OrderReader with raw SQL over the orders
// and agents tables.
type GormOrderReader struct {
	db *gorm.DB
}

// NewGormOrderReader creates the reader.
func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

type statusCount struct {
	Status int
	Count  int
}

type orderViewRow struct {
	OrderDTO
	AssignedAgentName string
}

// ListOrders returns the orders matching filter, newest first.
func (r *GormOrderReader) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]ports.OrderView, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.VisibleTo != nil {
		conditions = append(conditions, "(o.assigned_agent_id IS NULL OR o.assigned_agent_id = ?)")
		args = append(args, filter.VisibleTo.Bytes())
	}
	if filter.CustomerID != nil {
		conditions = append(conditions, "o.customer_id = ?")
		args = append(args, filter.CustomerID.Bytes())
	}

	query := selectOrderViews
	if len(conditions) > 0 {
		query += "\n\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\tORDER BY o.created_at DESC, o.id DESC"

	var rows []orderViewRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]ports.OrderView, 0, len(rows))
	for _, row := range rows {
		v, err := row.view()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// GetOrder returns one order view.
func (r *GormOrderReader) GetOrder(ctx context.Context, id kernel.UUID) (ports.OrderView, error) {
	var rows []orderViewRow
	err := r.db.WithContext(ctx).Raw(selectOrderViews+"\n\tWHERE o.id = ?", id.Bytes()).Scan(&rows).Error
	if err != nil {
		return ports.OrderView{}, err
	}
	if len(rows) == 0 {
		return ports.OrderView{}, errs.NewObjectNotFoundError("order", id.String())
	}
	return rows[0].view()
}

// CountByStatus returns the number of orders per status.
func (r *GormOrderReader) CountByStatus(ctx context.Context) (map[order.Status]int, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(*) AS count
		FROM orders
		GROUP BY status
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int, len(rows))
	for _, row := range rows {
		counts[order.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (row orderViewRow) view() (ports.OrderView, error) {
	s, err := toSnapshot(row.OrderDTO)
	if err != nil {
		return ports.OrderView{}, err
	}
	return ports.OrderView{Snapshot: s, AssignedAgentName: row.AssignedAgentName}, nil
}
