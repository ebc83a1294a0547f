package intesa

import (
	"errors"
	"testing"
	"time"

	"github.com/isparser/isparser/extractor/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecord_Income(t *testing.T) {
	b := newTestBuilder(t)

	m, err := b.BuildRecord(Record{Line: "01.03.2024 01.03.2024 Bonifico a Vostro favore disposto da ACME 150,00"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, "Bonifico a Vostro favore disposto da ACME", m.Description)
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("150")), m.Amount.String())
	assert.True(t, m.IsIncome())
	assert.Empty(t, m.Tags)
}

func TestBuildRecord_OutgoingIsNegative(t *testing.T) {
	b := newTestBuilder(t)

	m, err := b.BuildRecord(Record{Line: "05.03.2024 05.03.2024 Pagamento POS 1.234,56"})
	require.NoError(t, err)

	assert.Equal(t, "-1234.56", m.Amount.String())
	assert.True(t, m.IsOutgoing())
}

func TestBuildRecord_KeepsFirstDate(t *testing.T) {
	b := newTestBuilder(t)

	m, err := b.BuildRecord(Record{Line: "29.02.2024 04.03.2024 Canone 2,00"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.Date)
}

func TestBuildRecord_FoldsContinuation(t *testing.T) {
	b := newTestBuilder(t, "groceries=Pagamento POS .*CONAD")

	m, err := b.BuildRecord(Record{
		Line:         "05.03.2024 05.03.2024 Pagamento POS 12,50",
		Continuation: []string{"CONAD CITY", "MILANO"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Pagamento POS CONAD CITY MILANO", m.Description)
	assert.Equal(t, []string{"groceries"}, m.Tags)
}

func TestBuildRecord_StripsAsterisks(t *testing.T) {
	b := newTestBuilder(t)

	m, err := b.BuildRecord(Record{Line: "05.03.2024 05.03.2024 *Versamento* contanti 300,00"})
	require.NoError(t, err)

	assert.Equal(t, "Versamento contanti", m.Description)
	assert.Equal(t, "300", m.Amount.String())
}

func TestCleanDescription_ComposesAccents(t *testing.T) {
	assert.Equal(t, "CAFF\u00c8 DEL CENTRO", CleanDescription(" *CAFFE\u0300 DEL CENTRO* "))
}

func TestBuildRecord_SeparatorArtifact(t *testing.T) {
	b := newTestBuilder(t)

	m, err := b.BuildRecord(Record{Line: "05.03.2024 05.03.2024 Bonifico a Vostro favore disposto da ACME 2\x19500,10"})
	require.NoError(t, err)

	assert.Equal(t, "2500.1", m.Amount.String())
}

func TestBuildRecord_InvalidDate(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.BuildRecord(Record{Line: "31.02.2024 31.02.2024 Pagamento POS 10,00"})

	var parseErr *common.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "date", parseErr.Field)
	assert.Equal(t, "31.02.2024", parseErr.Token)
}

func TestBuildRecord_InvalidAmount(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.BuildRecord(Record{Line: "01.03.2024 01.03.2024 Pagamento POS ACME"})

	var parseErr *common.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "amount", parseErr.Field)
	assert.Equal(t, "ACME", parseErr.Token)
	assert.Contains(t, err.Error(), "Pagamento POS ACME")
}

func TestBuildRecord_MissingAmount(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.BuildRecord(Record{Line: "01.03.2024 01.03.2024"})

	var parseErr *common.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.True(t, errors.Is(err, errMissingAmount))
}

func TestAssemble_IgnoresPrintedSign(t *testing.T) {
	b := newTestBuilder(t)
	date := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	out := b.Assemble(date, decimal.RequireFromString("10"), "Pagamento POS")
	in := b.Assemble(date, decimal.RequireFromString("-10"), "Storno pagamento POS")

	assert.Equal(t, "-10", out.Amount.String())
	assert.Equal(t, "10", in.Amount.String())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.Date)
}

func TestNewBuilder_NilTags(t *testing.T) {
	cfg := setupTestConfig(t)
	b := NewBuilder(cfg, nil)

	m := b.Assemble(time.Now(), decimal.NewFromInt(1), "Versamento")
	assert.NotNil(t, m.Tags)
	assert.Empty(t, m.Tags)
}
