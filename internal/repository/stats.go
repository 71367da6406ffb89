package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

const topListLimit = 10

type StatsRepository interface {
	Collect(ctx context.Context) (*model.DashboardStats, error)
}

type pgStatsRepo struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &pgStatsRepo{pool: pool}
}

func (r *pgStatsRepo) Collect(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{OrdersByStatus: make(map[model.OrderStatus]int)}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE role = 'buyer'),
			COUNT(*) FILTER (WHERE role = 'seller'),
			COUNT(*) FILTER (WHERE role = 'seller' AND is_approved),
			COUNT(*) FILTER (WHERE role = 'seller' AND NOT is_approved AND is_active)
		 FROM accounts`,
	).Scan(&stats.TotalUsers, &stats.TotalBuyers, &stats.TotalSellers,
		&stats.ApprovedSellers, &stats.PendingSellers)
	if err != nil {
		return nil, fmt.Errorf("collect user stats: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active)
		 FROM products`,
	).Scan(&stats.TotalProducts, &stats.ActiveProducts, &stats.InactiveProducts)
	if err != nil {
		return nil, fmt.Errorf("collect product stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("collect order stats: %w", err)
	}
	for rows.Next() {
		var status model.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order count: %w", err)
		}
		stats.OrdersByStatus[status] = count
		stats.TotalOrders += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect order stats: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'delivered'`,
	).Scan(&stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("collect revenue: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT p.id, p.name, COUNT(oi.id) AS order_count
		 FROM products p
		 JOIN order_items oi ON oi.product_id = p.id
		 GROUP BY p.id, p.name
		 ORDER BY order_count DESC
		 LIMIT $1`, topListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("collect top products: %w", err)
	}
	for rows.Next() {
		var tp model.ProductOrderCount
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.OrderCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		stats.TopProducts = append(stats.TopProducts, tp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect top products: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT a.id, COALESCE(a.business_name, a.full_name), SUM(o.total_amount) AS revenue
		 FROM orders o
		 JOIN accounts a ON a.id = o.seller_id
		 WHERE o.status = 'delivered'
		 GROUP BY a.id
		 ORDER BY revenue DESC
		 LIMIT $1`, topListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("collect top sellers: %w", err)
	}
	for rows.Next() {
		var ts model.SellerRevenue
		var revenue decimal.Decimal
		if err := rows.Scan(&ts.SellerID, &ts.Name, &revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan top seller: %w", err)
		}
		ts.Revenue = revenue
		stats.TopSellers = append(stats.TopSellers, ts)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect top sellers: %w", err)
	}

	return stats, nil
}
