package notification

import "time"

type NotificationResponse struct {
	ID        string  `json:"id"`
	StaffID   *string `json:"staff_id,omitempty"`
	Category  string  `json:"category"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Category:  n.Category,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.StaffID != nil {
		v := n.StaffID.String()
		resp.StaffID = &v
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}

func mapToListResponse(ns []Notification) []NotificationResponse {
	resp := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		resp[i] = mapToResponse(n)
	}
	return resp
}
