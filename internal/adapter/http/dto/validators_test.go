package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct_TrimsAndEscapes(t *testing.T) {
	req := CreateReimbursementRequest{
		Amount:      "  100.00  ",
		Purpose:     " <script>alert(1)</script> ",
		Attachments: []string{" receipts/a.pdf ", "receipts/<b>.pdf"},
	}

	SanitizeStruct(&req)

	assert.Equal(t, "100.00", req.Amount)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", req.Purpose)
	assert.Equal(t, "receipts/a.pdf", req.Attachments[0])
	assert.Equal(t, "receipts/&lt;b&gt;.pdf", req.Attachments[1])
}

func TestSanitizeStruct_NonStructIgnored(t *testing.T) {
	s := "  hello  "
	SanitizeStruct(&s)
	assert.Equal(t, "  hello  ", s)

	SanitizeStruct(nil) // must not panic
}

func TestSanitizeStruct_PointerFields(t *testing.T) {
	type withPtr struct {
		Note *string
	}
	note := "  spaced  "
	v := withPtr{Note: &note}

	SanitizeStruct(&v)

	assert.Equal(t, "spaced", *v.Note)
}
