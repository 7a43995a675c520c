package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerRejectsUnknownDefault(t *testing.T) {
	_, err := NewManager("xx")
	require.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	m, err := NewManager(LangEN)
	require.NoError(t, err)

	tests := []struct {
		name      string
		preferred []string
		want      string
	}{
		{"empty", nil, LangEN},
		{"arabic header", []string{"ar-SA,ar;q=0.9,en;q=0.5"}, LangAR},
		{"query wins over header", []string{"ar", "en-US"}, LangAR},
		{"unsupported falls back", []string{"fr-FR"}, LangEN},
		{"garbage falls back", []string{";;;"}, LangEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Negotiate(tt.preferred...))
		})
	}
}

func TestLocalizerTranslate(t *testing.T) {
	m, err := NewManager(LangEN)
	require.NoError(t, err)

	en := m.Localizer(LangEN)
	assert.Equal(t, "Invalid or expired OTP", en.T("validation.invalid_or_expired_otp"))
	assert.Equal(t, "Must be at least 6 characters", en.T("validation.min_length", "6"))
	assert.Equal(t, "no.such.key", en.T("no.such.key"))

	ar := m.Localizer(LangAR)
	assert.Equal(t, LangAR, ar.Language())
	assert.NotEqual(t, en.T("LOGIN_SUCCESS"), ar.T("LOGIN_SUCCESS"))

	unknown := m.Localizer("de")
	assert.Equal(t, LangEN, unknown.Language())
}

func TestLocalesHaveSameKeys(t *testing.T) {
	m, err := NewManager(LangEN)
	require.NoError(t, err)

	for key := range m.locales[LangEN] {
		_, ok := m.locales[LangAR][key]
		assert.Truef(t, ok, "ar locale missing %q", key)
	}
	for key := range m.locales[LangAR] {
		_, ok := m.locales[LangEN][key]
		assert.Truef(t, ok, "en locale missing %q", key)
	}
}

func TestContextRoundTrip(t *testing.T) {
	m, err := NewManager(LangEN)
	require.NoError(t, err)

	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, "INTERNAL_ERROR", FromContext(context.Background()).T("INTERNAL_ERROR"))

	ctx := WithLocalizer(context.Background(), m.Localizer(LangAR))
	assert.Equal(t, LangAR, FromContext(ctx).Language())
}
