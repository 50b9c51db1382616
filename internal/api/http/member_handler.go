package http

import (
	"encoding/json"
	"net/http"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

type MemberHandler struct {
	memberSvc service.MemberService
}

func NewMemberHandler(memberSvc service.MemberService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberSvc.GetMember(r.Context(), memberIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

type changeTierRequest struct {
	Tier string `json:"tier"`
}

func (h *MemberHandler) ChangeTier(w http.ResponseWriter, r *http.Request) {
	var req changeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	member, err := h.memberSvc.ChangeTier(r.Context(), memberIDFromContext(r.Context()), domain.MembershipTier(req.Tier))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberSvc.DeactivateMember(r.Context(), memberIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	items, total, err := h.memberSvc.ListPayments(r.Context(), memberIDFromContext(r.Context()), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Meta: listMeta{Page: page, PageSize: pageSize, Total: total}})
}
