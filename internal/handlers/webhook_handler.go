package handlers

import (
	"io"
	"net/http"

	"propertypay-service/internal/services"
	"propertypay-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	Audits *services.AuditStore
}

func NewWebhookHandler(audits *services.AuditStore) *WebhookHandler {
	return &WebhookHandler{Audits: audits}
}

// CollectoCallback persists the raw payload and acknowledges immediately.
// The callback worker parses and applies it later, so a malformed body
// is still accepted here.
func (h *WebhookHandler) CollectoCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		resp := common.NewErrorResponse("unable to read request body", nil, http.StatusBadRequest)
		c.JSON(resp.Status, resp)
		return
	}

	if err := h.Audits.CreateAudit(c.Request.Context(), "collecto", string(body)); err != nil {
		resp := common.NewErrorResponse("failed to record callback", nil, http.StatusInternalServerError)
		c.JSON(resp.Status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
