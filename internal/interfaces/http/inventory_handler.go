package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

// InventoryHandler maneja entradas, salidas, ajustes e historial de stock (protegido).
type InventoryHandler struct {
	engine *inventory.LedgerEngine
	reader *inventory.LedgerReader
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.LedgerEngine, reader *inventory.LedgerReader) *InventoryHandler {
	return &InventoryHandler{engine: engine, reader: reader}
}

// StockIn godoc
// @Summary      Entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockChangeRequest  true  "product_id, quantity > 0, note"
// @Success      200   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	var in dto.StockChangeRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := h.engine.Receive(c.UserContext(), in.ProductID, in.Quantity, in.Note, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(operationResponse("stock agregado", res))
}

// StockOut godoc
// @Summary      Salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockChangeRequest  true  "product_id, quantity > 0, note"
// @Success      200   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	var in dto.StockChangeRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := h.engine.Issue(c.UserContext(), in.ProductID, in.Quantity, in.Note, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(operationResponse("stock retirado", res))
}

// Adjust godoc
// @Summary      Ajuste de inventario (conteo físico)
// @Description  Fija la cantidad absoluta; sin diferencia no se registra movimiento (changed=false).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustRequest  true  "product_id, new_quantity >= 0, note"
// @Success      200   {object}  dto.StockOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := h.engine.Reconcile(c.UserContext(), in.ProductID, *in.NewQuantity, in.Note, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	msg := "stock ajustado"
	if !res.Changed {
		msg = "sin cambios: la cantidad ya coincide"
	}
	return c.JSON(operationResponse(msg, res))
}

// Logs godoc
// @Summary      Mis movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/logs [get]
func (h *InventoryHandler) Logs(c *fiber.Ctx) error {
	list, err := h.reader.MovementsForUser(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromUserMovements(list))
}

// ProductLogs godoc
// @Summary      Historial de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/logs/{productId} [get]
func (h *InventoryHandler) ProductLogs(c *fiber.Ctx) error {
	list, err := h.reader.MovementsForItem(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromItemMovements(list))
}

func operationResponse(msg string, res *inventory.LedgerResult) dto.StockOperationResponse {
	out := dto.StockOperationResponse{
		Message:      msg,
		Product:      dto.FromProduct(res.Item),
		Changed:      res.Changed,
		Notification: dto.LowStockNotification(res.Item),
	}
	if res.Movement != nil {
		m := dto.FromMovement(res.Movement)
		out.Movement = &m
	}
	return out
}
