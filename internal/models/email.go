package models

import "time"

const (
	EmailPending   = "pending"
	EmailSent      = "sent"
	EmailDelivered = "delivered"
	EmailFailed    = "failed"
	EmailBounced   = "bounced"
	EmailSpam      = "spam"
)

// EmailTemplate is a reusable notification looked up by Name.
type EmailTemplate struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Name               string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Subject            string `gorm:"size:200;not null" json:"subject"`
	HTMLContent        string `json:"html_content"`
	PlainContent       string `json:"plain_content"`
	SendGridTemplateID string `gorm:"size:100" json:"sendgrid_template_id"`
	IsActive           bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailLog records one send attempt.
type EmailLog struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Recipient         string         `gorm:"index;not null" json:"recipient"`
	Sender            string         `gorm:"not null" json:"sender"`
	Subject           string         `gorm:"size:200" json:"subject"`
	TemplateID        *uint          `json:"template_id"`
	Template          *EmailTemplate `gorm:"constraint:OnDelete:SET NULL" json:"template,omitempty"`
	SendGridMessageID string         `gorm:"size:200;index" json:"sendgrid_message_id"`
	Status            string         `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	SentAt            time.Time      `gorm:"index;not null" json:"sent_at"`
	DeliveredAt       *time.Time     `json:"delivered_at"`
	ErrorMessage      string         `json:"error_message"`
}
