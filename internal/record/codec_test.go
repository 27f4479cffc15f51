package record

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObligationRoundTrip(t *testing.T) {
	cases := []Obligation{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 100, CreatedAt: 1_700_000_000_000_000_000},
		{ID: ^uint64(0), Debtor: "Zoë", Creditor: "日本", Amount: ^uint64(0), CreatedAt: 0},
		{},
	}
	for _, want := range cases {
		got, err := Obligations.Decode(Obligations.Encode(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEscrowRoundTrip(t *testing.T) {
	want := EscrowHold{ObligationID: 7, Amount: 50, CreatedAt: 42}
	got, err := Escrows.Decode(Escrows.Encode(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPolicyRoundTrip(t *testing.T) {
	want := CoveragePolicy{ID: 2, Holder: "carol", Category: "wheat", CoverageAmount: 1000, Start: 100, End: 200}
	got, err := Policies.Decode(Policies.Encode(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClaimRoundTrip(t *testing.T) {
	want := Claim{ID: 3, PolicyID: 2, ClaimAmount: 300, ClaimDate: 99}
	got, err := Claims.Decode(Claims.Encode(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeLayout(t *testing.T) {
	b := Escrows.Encode(EscrowHold{ObligationID: 1, Amount: 2, CreatedAt: 3})

	// header + three integers + checksum
	require.Len(t, b, headerSize+3*8+checksumSize)
	assert.Equal(t, byte(KindEscrow), b[0])
	assert.Equal(t, byte(formatVersion), b[1])
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(b[2:10]))
}

func TestEncodeDeterministic(t *testing.T) {
	o := Obligation{ID: 5, Debtor: "d", Creditor: "c", Amount: 9, CreatedAt: 11}
	assert.Equal(t, Obligations.Encode(o), Obligations.Encode(o))
}

func TestDecode_Corrupt(t *testing.T) {
	valid := Obligations.Encode(Obligation{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 100})

	flipped := append([]byte(nil), valid...)
	flipped[5] ^= 0xff

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "truncated"},
		{"header only", valid[:3], "truncated"},
		{"bit flip", flipped, "checksum"},
		{"truncated body", valid[:len(valid)-6], "checksum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Obligations.Decode(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptRecord))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode_WrongKind(t *testing.T) {
	b := Claims.Encode(Claim{ID: 1, PolicyID: 2, ClaimAmount: 3, ClaimDate: 4})

	_, err := Escrows.Decode(b)
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Contains(t, err.Error(), "kind byte")
}

func TestDecode_UnknownVersion(t *testing.T) {
	e := &encoder{buf: []byte{byte(KindEscrow), formatVersion + 1}}
	e.uint64(1)
	e.uint64(2)
	e.uint64(3)

	_, err := Escrows.Decode(e.finish())
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Contains(t, err.Error(), "version")
}

func TestDecode_TrailingBytes(t *testing.T) {
	e := newEncoder(KindEscrow)
	e.uint64(1)
	e.uint64(2)
	e.uint64(3)
	e.uint64(4)

	_, err := Escrows.Decode(e.finish())
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Contains(t, err.Error(), "trailing")
}

func TestDecode_TextOverrun(t *testing.T) {
	e := newEncoder(KindObligation)
	e.uint64(1)
	e.buf = binary.AppendUvarint(e.buf, 500)
	e.buf = append(e.buf, "short"...)

	_, err := Obligations.Decode(e.finish())
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Contains(t, err.Error(), "overruns")
}

func TestCheckSize(t *testing.T) {
	small := Obligations.Encode(Obligation{Debtor: "a", Creditor: "b", Amount: 1})
	assert.NoError(t, Obligations.CheckSize(small))

	big := Obligations.Encode(Obligation{Debtor: strings.Repeat("x", MaxSize), Creditor: "b", Amount: 1})
	err := Obligations.CheckSize(big)
	require.ErrorIs(t, err, ErrRecordTooLarge)
	assert.Contains(t, err.Error(), "obligation")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "obligation", KindObligation.String())
	assert.Equal(t, "escrow", KindEscrow.String())
	assert.Equal(t, "policy", KindPolicy.String())
	assert.Equal(t, "claim", KindClaim.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
