package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("company_20240102-000000.pdf"))

	for _, bad := range []string{"", "a/b.pdf", "a\\b.pdf", "..secret.pdf", "../other/x.pdf"} {
		assert.ErrorIs(t, ValidateName(bad), ErrBadName, "name %q", bad)
	}
}

func TestIsReportKey(t *testing.T) {
	assert.True(t, isReportKey("enterprise/report/acme/company_20240102-000000.pdf"))
	assert.True(t, isReportKey("enterprise/report/acme/quarterly.PDF"))
	assert.True(t, isReportKey("enterprise/report/acme/mixed.Pdf"))
	assert.False(t, isReportKey("enterprise/report/acme/notes.txt"))
	assert.False(t, isReportKey("enterprise/report/acme/"))
}
