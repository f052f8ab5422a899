package domain

import "time"

type InquiryType string

const (
	InquiryStudentSupport   InquiryType = "student_support"
	InquiryMerchantBusiness InquiryType = "merchant_business"
)

type ContactMessage struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Message     string
	InquiryType InquiryType
	CreatedAt   time.Time
}
