package services

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/models"
)

var phonePattern = regexp.MustCompile(`^\+?55?\d{10,11}$`)

// chargeExpiry is how long a PIX QR code stays payable.
const chargeExpiry = 30 * time.Minute

type PaymentService struct {
	DB  *gorm.DB
	Pix PixAPI
}

func NewPaymentService(db *gorm.DB, pix PixAPI) *PaymentService {
	return &PaymentService{DB: db, Pix: pix}
}

type CreatePixPaymentDTO struct {
	OrderID uint   `json:"order_id"`
	Phone   string `json:"phone"`
	TaxID   string `json:"tax_id"`
}

// CreatePixPayment creates the PIX charge for a PENDING order. At most one
// payment per order may be PENDING at a time.
func (s *PaymentService) CreatePixPayment(owner *models.User, req CreatePixPaymentDTO) (*models.Payment, error) {
	if !ValidateTaxID(req.TaxID) {
		return nil, validationErrorf("invalid CPF/CNPJ")
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, validationErrorf("invalid phone number")
	}

	var order models.Order
	if err := s.DB.First(&order, req.OrderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != owner.ID && owner.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if order.Status != models.OrderPending {
		return nil, ErrInvalidTransition
	}

	var pending int64
	if err := s.DB.Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", order.ID, models.PaymentPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrPaymentPending
	}

	charge, err := s.Pix.CreateCharge(ChargeRequest{
		Reference: uuid.NewString(),
		Amount:    order.Total,
		TaxID:     req.TaxID,
		Phone:     req.Phone,
		ExpiresIn: int(chargeExpiry.Seconds()),
	})
	if err != nil {
		logrus.WithField("order_id", order.ID).Errorf("create pix charge: %v", err)
		return nil, fmt.Errorf("payment provider unavailable: %w", err)
	}

	expiresAt := charge.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(chargeExpiry)
	}

	payment := models.Payment{
		OrderID:    order.ID,
		Method:     "pix",
		ProviderID: charge.ID,
		Amount:     order.Total,
		QRCode:     charge.QRCode,
		CopyPaste:  charge.CopyPaste,
		Status:     models.PaymentPending,
		ExpiresAt:  &expiresAt,
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"provider_id": charge.ID,
	}).Info("pix charge created")
	return &payment, nil
}

func (s *PaymentService) GetPayment(id uint, user *models.User) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.Role != models.RoleAdmin {
		var order models.Order
		if err := s.DB.First(&order, payment.OrderID).Error; err != nil {
			return nil, err
		}
		if order.UserID != user.ID {
			return nil, ErrForbidden
		}
	}
	return &payment, nil
}

// ValidateTaxID accepts a CPF (11 digits) or CNPJ (14 digits) with valid
// check digits. Formatting characters are stripped first.
func ValidateTaxID(doc string) bool {
	digits := make([]int, 0, 14)
	for _, r := range doc {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		} else if r != '.' && r != '-' && r != '/' && r != ' ' {
			return false
		}
	}

	switch len(digits) {
	case 11:
		return validCPF(digits)
	case 14:
		return validCNPJ(digits)
	default:
		return false
	}
}

func allEqual(digits []int) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

func validCPF(d []int) bool {
	// Sequences like 000.000.000-00 pass the check-digit math but are invalid.
	if allEqual(d) {
		return false
	}

	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += d[i] * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != d[pos] {
			return false
		}
	}
	return true
}

func validCNPJ(d []int) bool {
	if allEqual(d) {
		return false
	}

	weights := [][]int{
		{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
		{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
	}
	for n, w := range weights {
		sum := 0
		for i, weight := range w {
			sum += d[i] * weight
		}
		check := sum % 11
		if check < 2 {
			check = 0
		} else {
			check = 11 - check
		}
		if check != d[12+n] {
			return false
		}
	}
	return true
}

// FormatAmount renders a money value the way the provider expects.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
