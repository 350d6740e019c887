package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// AdminHandler endpoints del panel de administración (rol admin).
type AdminHandler struct {
	users    *usecase.UserUseCase
	products *usecase.ProductUseCase
	audit    *usecase.AuditUseCase
	stats    *analytics.StatsUseCase
	auditor  *inventory.LedgerAuditor
}

// NewAdminHandler construye el handler.
func NewAdminHandler(users *usecase.UserUseCase, products *usecase.ProductUseCase, audit *usecase.AuditUseCase, stats *analytics.StatsUseCase, auditor *inventory.LedgerAuditor) *AdminHandler {
	return &AdminHandler{users: users, products: products, audit: audit, stats: stats, auditor: auditor}
}

// ListUsers godoc
// @Summary      Listar usuarios
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	out, err := h.users.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetUser godoc
// @Summary      Obtener usuario
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	out, err := h.users.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateUser godoc
// @Summary      Modificar usuario
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del usuario"
// @Param        body  body  dto.AdminUpdateUserRequest  true  "name, business_name, role"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var in dto.AdminUpdateUserRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.users.Update(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeactivateUser godoc
// @Summary      Desactivar usuario (soft delete)
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	if err := h.users.SoftDelete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "usuario desactivado"})
}

// DeleteUser godoc
// @Summary      Eliminar usuario definitivamente
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/delete/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.HardDelete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "usuario eliminado definitivamente"})
}

// GlobalStats godoc
// @Summary      Estadísticas globales
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.GlobalStatsResponse
// @Router       /api/admin/stats/global [get]
func (h *AdminHandler) GlobalStats(c *fiber.Ctx) error {
	out, err := h.stats.GlobalStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AuditLogs godoc
// @Summary      Log de auditoría
// @Description  Más recientes primero, máximo 100.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        userId  query  string  false  "filtrar por usuario"
// @Param        action  query  string  false  "filtrar por acción"
// @Param        from    query  string  false  "desde (RFC3339 o AAAA-MM-DD)"
// @Param        to      query  string  false  "hasta (RFC3339 o AAAA-MM-DD)"
// @Success      200  {array}   dto.AuditLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/audit/logs [get]
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	out, err := h.audit.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeactivateProduct godoc
// @Summary      Eliminar producto (soft delete)
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/products/{id} [delete]
func (h *AdminHandler) DeactivateProduct(c *fiber.Ctx) error {
	if err := h.products.SoftDelete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "producto desactivado"})
}

// DeleteProduct godoc
// @Summary      Eliminar producto definitivamente
// @Description  El historial de movimientos se conserva.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/delete/product/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.products.HardDelete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "producto eliminado definitivamente"})
}

// LedgerScan godoc
// @Summary      Auditar el ledger
// @Description  Compara la cantidad de cada producto con la suma de sus movimientos.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.DriftReportResponse
// @Router       /api/admin/ledger/scan [get]
func (h *AdminHandler) LedgerScan(c *fiber.Ctx) error {
	reports, err := h.auditor.Scan(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DriftReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, driftResponse(r))
	}
	return c.JSON(out)
}

// LedgerCheck godoc
// @Summary      Auditar un producto
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.DriftReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/ledger/{id} [get]
func (h *AdminHandler) LedgerCheck(c *fiber.Ctx) error {
	r, err := h.auditor.Check(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(driftResponse(r))
}

// LedgerRepair godoc
// @Summary      Corregir la deriva de un producto
// @Description  Fija la cantidad almacenada a la suma de movimientos.
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.DriftReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/ledger/{id}/repair [post]
func (h *AdminHandler) LedgerRepair(c *fiber.Ctx) error {
	r, err := h.auditor.Repair(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if r.Repaired {
		h.audit.Record(c.UserContext(), GetUserID(c), entity.AuditRepairLedger, map[string]any{
			"productId": r.ItemID, "stored": r.Stored, "replayed": r.Replayed,
		})
	}
	return c.JSON(driftResponse(r))
}

func driftResponse(r inventory.DriftReport) dto.DriftReportResponse {
	return dto.DriftReportResponse{ProductID: r.ItemID, Stored: r.Stored, Replayed: r.Replayed, Drift: r.Drift, Repaired: r.Repaired}
}
