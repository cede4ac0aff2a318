package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocTemplate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tpl, err := NewDocTemplate(uuid.New(), "Classic invoice", DocumentTypeInvoice, PaperSizeA4, "<html>{{.InvoiceNumber}}</html>")
		require.NoError(t, err)
		assert.True(t, tpl.Active)
		assert.False(t, tpl.IsDefault)
		assert.Equal(t, OrientationPortrait, tpl.Orientation)
	})

	t.Run("invalid document type", func(t *testing.T) {
		_, err := NewDocTemplate(uuid.New(), "X", DocumentType("MEMO"), PaperSizeA4, "<html></html>")
		assert.Error(t, err)
	})

	t.Run("invalid paper size", func(t *testing.T) {
		_, err := NewDocTemplate(uuid.New(), "X", DocumentTypeReceipt, PaperSize("LETTER"), "<html></html>")
		assert.Error(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := NewDocTemplate(uuid.New(), "X", DocumentTypeReceipt, PaperSizeReceipt80, "")
		assert.Error(t, err)
	})
}

func TestDocTemplate_DefaultGuard(t *testing.T) {
	tpl, err := NewDocTemplate(uuid.New(), "Default quote", DocumentTypeQuotation, PaperSizeA4, "<html></html>")
	require.NoError(t, err)

	tpl.MarkDefault()
	assert.Error(t, tpl.Deactivate(), "default template must not deactivate")

	tpl.ClearDefault()
	require.NoError(t, tpl.Deactivate())
	assert.False(t, tpl.Active)
}

func TestCommunicationLog(t *testing.T) {
	tenantID := uuid.New()

	t.Run("email requires recipient", func(t *testing.T) {
		_, err := NewCommunicationLog(tenantID, DocumentTypeInvoice, uuid.New(), "INV-2026-0001", ChannelEmail, "")
		assert.Error(t, err)
	})

	t.Run("print needs no recipient", func(t *testing.T) {
		log, err := NewCommunicationLog(tenantID, DocumentTypeInvoice, uuid.New(), "INV-2026-0001", ChannelPrint, "")
		require.NoError(t, err)
		assert.Equal(t, DispatchStatusQueued, log.Status)
	})

	t.Run("sent flow", func(t *testing.T) {
		log, err := NewCommunicationLog(tenantID, DocumentTypeInvoice, uuid.New(), "INV-2026-0001", ChannelWhatsApp, "+94771234567")
		require.NoError(t, err)

		require.NoError(t, log.MarkSent("wamid.123"))
		assert.Equal(t, DispatchStatusSent, log.Status)
		assert.NotNil(t, log.SentAt)

		assert.Error(t, log.MarkFailed("too late"), "sent dispatch is final")
	})

	t.Run("failed flow", func(t *testing.T) {
		log, err := NewCommunicationLog(tenantID, DocumentTypeQuotation, uuid.New(), "QT-2026-0001", ChannelEmail, "buyer@example.com")
		require.NoError(t, err)

		require.NoError(t, log.MarkFailed("smtp timeout"))
		assert.Equal(t, DispatchStatusFailed, log.Status)
		assert.Error(t, log.MarkSent("x"))
	})
}
