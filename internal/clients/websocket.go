package clients

import (
	"context"
	"fmt"

	ws "debtster-core/internal/transport/websocket"
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) NotifyReportProgress(
	ctx context.Context,
	userID int64,
	exportID string,
	progress float64,
	stage string,
) error {
	if c.hub == nil {
		return nil
	}

	channel := fmt.Sprintf("notify_user_of_report_progress#%d", userID)
	data := map[string]interface{}{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	message := &ws.Message{
		Type:    "report_progress",
		Channel: channel,
		Data:    data,
	}

	c.hub.Broadcast(userID, message)
	return nil
}

func (c *WebSocketClient) NotifyReportComplete(
	ctx context.Context,
	userID int64,
	exportID string,
	url string,
	filename string,
) error {
	if c.hub == nil {
		return nil
	}

	channel := fmt.Sprintf("notify_user_when_report_complete#%d", userID)
	message := &ws.Message{
		Type:    "report_complete",
		Channel: channel,
		Data: map[string]interface{}{
			"id":       exportID,
			"url":      url,
			"filename": filename,
			"user_id":  userID,
		},
	}

	c.hub.Broadcast(userID, message)
	return nil
}

// NotifyReportFailed tells a user their report export failed.
func (c *WebSocketClient) NotifyReportFailed(ctx context.Context, userID int64, exportID string, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	channel := fmt.Sprintf("notify_user_when_report_failed#%d", userID)
	message := &ws.Message{
		Type:    "report_failed",
		Channel: channel,
		Data: map[string]interface{}{
			"id":      exportID,
			"message": errMsg,
			"user_id": userID,
		},
	}

	c.hub.Broadcast(userID, message)
	return nil
}

// NotifyAgreementStatus fans an agreement status change out to every
// connected operator.
func (c *WebSocketClient) NotifyAgreementStatus(ctx context.Context, agreementID, clientID, status string) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "agreement_status",
		Channel: "agreement_status_changed",
		Data: map[string]interface{}{
			"id":        agreementID,
			"client_id": clientID,
			"status":    status,
		},
	}

	c.hub.BroadcastAll(message)
	return nil
}
