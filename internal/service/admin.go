package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tealeg/xlsx"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNotSeller       = errors.New("account is not a seller")
)

type AdminService struct {
	accounts repository.AccountRepository
	orders   repository.OrderRepository
	stats    repository.StatsRepository
}

func NewAdminService(accounts repository.AccountRepository, orders repository.OrderRepository, stats repository.StatsRepository) *AdminService {
	return &AdminService{accounts: accounts, orders: orders, stats: stats}
}

func (s *AdminService) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	stats, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}

	return &dto.AdminDashboardResponse{
		TotalUsers:      stats.TotalUsers,
		TotalBuyers:     stats.TotalBuyers,
		TotalSellers:    stats.TotalSellers,
		ApprovedSellers: stats.ApprovedSellers,
		PendingSellers:  stats.PendingSellers,

		TotalProducts:    stats.TotalProducts,
		ActiveProducts:   stats.ActiveProducts,
		InactiveProducts: stats.InactiveProducts,

		TotalOrders:    stats.TotalOrders,
		OrdersByStatus: stats.OrdersByStatus,
		TotalRevenue:   stats.TotalRevenue,

		TopProducts: lo.Map(stats.TopProducts, func(p model.ProductOrderCount, _ int) dto.TopProduct {
			return dto.TopProduct{ProductID: p.ProductID, Name: p.Name, OrderCount: p.OrderCount}
		}),
		TopSellers: lo.Map(stats.TopSellers, func(t model.SellerRevenue, _ int) dto.TopSeller {
			return dto.TopSeller{SellerID: t.SellerID, Name: t.Name, Revenue: t.Revenue}
		}),
	}, nil
}

func (s *AdminService) PendingSellers(ctx context.Context) ([]dto.AccountResponse, error) {
	sellers, err := s.accounts.ListPendingSellers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending sellers: %w", err)
	}
	return lo.Map(sellers, func(a model.Account, _ int) dto.AccountResponse {
		return toAccountResponse(&a)
	}), nil
}

// ApproveSeller grants a pending seller access to listing and selling.
func (s *AdminService) ApproveSeller(ctx context.Context, sellerID uuid.UUID) (*dto.AccountResponse, error) {
	return s.setSellerApproval(ctx, sellerID, true, true)
}

// RejectSeller declines the application and deactivates the account so
// the seller cannot log in.
func (s *AdminService) RejectSeller(ctx context.Context, sellerID uuid.UUID) (*dto.AccountResponse, error) {
	return s.setSellerApproval(ctx, sellerID, false, false)
}

func (s *AdminService) setSellerApproval(ctx context.Context, sellerID uuid.UUID, approved, active bool) (*dto.AccountResponse, error) {
	account, err := s.accounts.GetByID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if !account.IsSeller() {
		return nil, ErrNotSeller
	}

	if err := s.accounts.SetApproval(ctx, sellerID, approved, active); err != nil {
		return nil, fmt.Errorf("set approval: %w", err)
	}
	account.IsApproved = approved
	account.IsActive = active

	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *AdminService) ApproveAllSellers(ctx context.Context) (*dto.BulkApproveResponse, error) {
	n, err := s.accounts.ApproveAllPendingSellers(ctx)
	if err != nil {
		return nil, fmt.Errorf("approve all sellers: %w", err)
	}
	return &dto.BulkApproveResponse{Approved: n}, nil
}

var exportHeader = []string{
	"Order ID", "Buyer Email", "Seller Email", "Status", "Payment Method",
	"Shipping Address", "Total Amount", "Item Count", "Created At",
}

// ExportOrders builds the full order book as an xlsx workbook.
func (s *AdminService) ExportOrders(ctx context.Context) (*xlsx.File, error) {
	rows, err := s.orders.ListForExport(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders for export: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetValue(h)
	}

	for _, row := range rows {
		r := sheet.AddRow()
		r.AddCell().SetValue(row.OrderID.String())
		r.AddCell().SetValue(row.BuyerEmail)
		r.AddCell().SetValue(row.SellerEmail)
		r.AddCell().SetValue(string(row.Status))
		r.AddCell().SetValue(row.PaymentMethod)
		r.AddCell().SetValue(row.ShippingAddress)
		r.AddCell().SetValue(row.TotalAmount.StringFixed(2))
		r.AddCell().SetValue(row.ItemCount)
		r.AddCell().SetValue(row.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}
