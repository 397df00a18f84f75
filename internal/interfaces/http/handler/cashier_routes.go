package handler

import (
	"github.com/hotelops/backend/internal/interfaces/http/middleware"
	"github.com/hotelops/backend/internal/interfaces/http/router"
)

// CashierHandlers groups the handlers mounted under /cashier
type CashierHandlers struct {
	Days     *DayHandler
	Shifts   *ShiftHandler
	Vouchers *VoucherHandler
	History  *HistoryHandler
	Reports  *ReportHandler
}

// CashierRoutes creates the route group for the reconciliation engine.
// Every mutating route requires the X-User-ID header.
func CashierRoutes(h CashierHandlers) *router.DomainGroup {
	group := router.NewDomainGroup("cashier", "/cashier")
	group.Use(middleware.Identity())
	requireUser := middleware.RequireUser()

	days := group.Group("days", "/days")
	days.POST("", requireUser, h.Days.Initialize)
	days.GET("/:date", h.Days.Get)
	days.GET("/:date/shifts", h.Days.ListShifts)
	days.GET("/:date/can-close", h.Days.CanClose)
	days.POST("/:date/close", requireUser, h.Days.Close)
	days.POST("/:date/reopen", requireUser, h.Days.Reopen)
	days.POST("/:date/repair", requireUser, h.Days.Repair)

	shifts := group.Group("shifts", "/shifts")
	shifts.GET("/:id", h.Shifts.Get)
	shifts.PUT("/:id/income", requireUser, h.Shifts.UpdateIncome)
	shifts.PUT("/:id/denominations", requireUser, h.Shifts.SetDenominations)
	shifts.PUT("/:id/payments", requireUser, h.Shifts.SetPayments)
	shifts.PUT("/:id/users", requireUser, h.Shifts.AssignUsers)
	shifts.PUT("/:id/notes", requireUser, h.Shifts.UpdateNotes)
	shifts.POST("/:id/close", requireUser, h.Shifts.Close)
	shifts.POST("/:id/reopen", requireUser, h.Shifts.Reopen)
	shifts.POST("/:id/audit", requireUser, h.Shifts.Audit)

	vouchers := group.Group("vouchers", "/vouchers")
	vouchers.POST("", requireUser, h.Vouchers.Create)
	vouchers.GET("", h.Vouchers.List)
	vouchers.GET("/active", h.Vouchers.ListActive)
	vouchers.GET("/:id", h.Vouchers.Get)
	vouchers.POST("/:id/justify", requireUser, h.Vouchers.Justify)
	vouchers.POST("/:id/cancel", requireUser, h.Vouchers.Cancel)

	group.GET("/history", h.History.List)

	reports := group.Group("reports", "/reports")
	reports.GET("/monthly/:year/:month", h.Reports.Monthly)
	reports.GET("/monthly/:year/:month/export", h.Reports.ExportMonthly)
	reports.GET("/dashboard/:date", h.Reports.Dashboard)

	return group
}
