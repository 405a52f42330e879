package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/fastygo/orderdesk/domain"
)

const (
	MaxNameLength   = 200
	MaxRemarkLength = 2000
	MaxImageURLs    = 10
)

// Mode selects which order checks apply.
type Mode int

const (
	// ModeCreate adds the derived-amount check.
	ModeCreate Mode = iota
	ModeUpdate
)

var urlPattern = regexp.MustCompile(`(?i)^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})(:\d{1,5})?([/\w .%~+=&?#-]*)*/?$`)

// ValidateOrder checks required fields, enum membership and counts. On create
// it also requires totalAmount to equal the price-list total exactly.
func ValidateOrder(o *domain.Order, mode Mode) error {
	if o == nil {
		return domain.ErrInvalidPayload
	}
	if blank(o.CID) {
		return required("cid")
	}
	if blank(o.CustomerName) {
		return required("customerName")
	}
	if blank(string(o.ProductVersion)) {
		return required("productVersion")
	}
	if o.TotalAmount == nil {
		return required("totalAmount")
	}
	if !o.ProductVersion.Valid() {
		return domain.Invalidf("invalid product version: %s", o.ProductVersion)
	}
	if !o.Status.Valid() {
		return domain.Invalidf("invalid status: %d", int(o.Status))
	}
	if o.DevScale <= 0 {
		return domain.Invalidf("devScale must be a positive integer, got %d", o.DevScale)
	}
	if o.PurchasedLicCount <= 0 {
		return domain.Invalidf("purchasedLicCount must be a positive integer, got %d", o.PurchasedLicCount)
	}
	if o.TotalAmount.Sign() <= 0 {
		return domain.Invalidf("totalAmount must be greater than 0")
	}
	if length(o.Description) > MaxRemarkLength {
		return domain.Invalidf("description must not exceed %d characters", MaxRemarkLength)
	}

	if mode == ModeCreate {
		expected, err := ExpectedTotal(o.ProductVersion, o.PurchasedLicCount)
		if err != nil {
			return err
		}
		if !expected.Equal(*o.TotalAmount) {
			return domain.Invalidf("totalAmount mismatch: expected %s, got %s", expected, o.TotalAmount)
		}
	}
	return nil
}

// ValidateInfluence applies the same rules on create and update.
func ValidateInfluence(e *domain.InfluenceEvent) error {
	if e == nil {
		return domain.ErrInvalidPayload
	}
	if blank(e.ID) {
		return required("id")
	}
	if blank(e.Name) {
		return required("name")
	}
	if blank(string(e.Type)) {
		return required("type")
	}
	if blank(string(e.Status)) {
		return required("status")
	}
	if e.EventTime == nil {
		return required("eventTime")
	}
	if err := ValidateInfluenceType(string(e.Type)); err != nil {
		return err
	}
	if !e.Status.Valid() {
		return domain.Invalidf("invalid status: %s", e.Status)
	}
	if !blank(e.Link) && !ValidURL(e.Link) {
		return domain.Invalidf("invalid link format: %s", e.Link)
	}
	if length(e.Name) > MaxNameLength {
		return domain.Invalidf("name must not exceed %d characters", MaxNameLength)
	}
	if length(e.Remark) > MaxRemarkLength {
		return domain.Invalidf("remark must not exceed %d characters", MaxRemarkLength)
	}
	if len(e.ImageURLs) > MaxImageURLs {
		return domain.Invalidf("at most %d images are allowed, got %d", MaxImageURLs, len(e.ImageURLs))
	}
	return nil
}

// ValidateInfluenceType guards type filters arriving from the API.
func ValidateInfluenceType(raw string) error {
	if blank(raw) {
		return required("type")
	}
	if !domain.InfluenceType(raw).Valid() {
		return domain.Invalidf("invalid influence type: %s", raw)
	}
	return nil
}

// ValidURL reports whether s looks like an http(s) URL or bare host/path.
func ValidURL(s string) bool {
	return urlPattern.MatchString(strings.TrimSpace(s))
}

func required(field string) error {
	return domain.Invalidf("%s is required", field)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// length counts user-perceived characters of the NFC form.
func length(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}
