package http

import (
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"time"
)

// ContactPayload is one recipient of an emergency SMS.
type ContactPayload struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Relationship string `json:"relationship,omitempty"`
}

// LocationPayload is a coordinate pair. Pointers keep a zero coordinate distinguishable from a missing one.
type LocationPayload struct {
	Lat *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
}

// SendEmergencySMSRequest is the body of the dispatch endpoint.
type SendEmergencySMSRequest struct {
	Contacts []ContactPayload `json:"contacts" binding:"required,min=1,dive"`
	Message  string           `json:"message"`
	Location *LocationPayload `json:"location"`
}

// TriggerSOSRequest is the optional body of the SOS endpoint.
type TriggerSOSRequest struct {
	Message  string           `json:"message"`
	Location *LocationPayload `json:"location"`
}

// CreateContactRequest defines the structure for a new contact.
type CreateContactRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Relationship string `json:"relationship"`
}

// UpdateProfileRequest replaces the user's SOS settings.
type UpdateProfileRequest struct {
	DisplayName  string `json:"display_name"`
	AlertMessage string `json:"alert_message"`
}

// DispatchResultResponse is the per-contact outcome returned to the caller.
type DispatchResultResponse struct {
	Contact string `json:"contact"`
	Status  string `json:"status"`
	SID     string `json:"sid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendEmergencySMSResponse is the success body of the dispatch endpoint.
type SendEmergencySMSResponse struct {
	Success bool                     `json:"success"`
	Results []DispatchResultResponse `json:"results"`
}

// TriggerSOSResponse is the success body of the SOS endpoint.
type TriggerSOSResponse struct {
	Success bool                     `json:"success"`
	AlertID uuid.UUID                `json:"alert_id"`
	Status  string                   `json:"status"`
	Results []DispatchResultResponse `json:"results"`
}

// LocationResponse mirrors LocationPayload on the way out.
type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AlertResponse defines the structure of a stored alert.
type AlertResponse struct {
	ID        uuid.UUID                `json:"id"`
	Message   string                   `json:"message"`
	Location  *LocationResponse        `json:"location"`
	Status    string                   `json:"status"`
	Results   []DispatchResultResponse `json:"results"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// ContactResponse defines the structure of a stored contact.
type ContactResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Relationship string    `json:"relationship,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileResponse defines the structure of the user's SOS settings.
type ProfileResponse struct {
	DisplayName  string    `json:"display_name"`
	AlertMessage string    `json:"alert_message"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (p *LocationPayload) toModel() *model.Location {
	if p == nil {
		return nil
	}
	return &model.Location{Lat: *p.Lat, Lng: *p.Lng}
}

func toAlertRequest(req *SendEmergencySMSRequest) *model.AlertRequest {
	contacts := make([]model.Contact, 0, len(req.Contacts))
	for _, c := range req.Contacts {
		contacts = append(contacts, model.Contact{Name: c.Name, Phone: c.Phone, Relationship: c.Relationship})
	}
	return &model.AlertRequest{
		Contacts: contacts,
		Message:  req.Message,
		Location: req.Location.toModel(),
	}
}

func toDispatchResultResponses(results []model.DispatchResult) []DispatchResultResponse {
	out := make([]DispatchResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, DispatchResultResponse{
			Contact: r.Contact,
			Status:  string(r.Status),
			SID:     r.SID,
			Error:   r.Error,
		})
	}
	return out
}

func toAlertResponse(a *model.Alert) AlertResponse {
	resp := AlertResponse{
		ID:        a.ID,
		Message:   a.Message,
		Status:    string(a.Status),
		Results:   toDispatchResultResponses(a.Results),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Location != nil {
		resp.Location = &LocationResponse{Lat: a.Location.Lat, Lng: a.Location.Lng}
	}
	return resp
}

func toContactResponse(c *model.Contact) ContactResponse {
	return ContactResponse{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Relationship: c.Relationship,
		CreatedAt:    c.CreatedAt,
	}
}

func toProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		DisplayName:  p.DisplayName,
		AlertMessage: p.AlertMessage,
		UpdatedAt:    p.UpdatedAt,
	}
}
