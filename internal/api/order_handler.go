package api

import (
	"net/http"

	"relytailors-be/internal/order"
	"relytailors-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const msgOrderRemoved = "Order removed"

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var input order.CreateOrderInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.CreateOrder(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, o)
}

func (h *handler) myOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orders, err := h.orders.GetOwnOrders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orders)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	o, err := h.orders.GetOrderByID(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orders)
}

func (h *handler) getOrderAdmin(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrderByIDAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input order.UpdateStatusInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.SetOrderStatus(r.Context(), chi.URLParam(r, "id"), input.OrderStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ConfirmOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (h *handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, msgOrderRemoved)
}
