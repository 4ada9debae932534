package intake

import (
	"testing"

	"freshops/internal"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name        string
		subject     string
		text        string
		attachments []string
		want        internal.IntakeKind
	}{
		{
			name:    "price list by subject",
			subject: "Weekly Price List",
			text:    "Carrot 4.5kg 15",
			want:    internal.IntakePriceList,
		},
		{
			name:        "quotation with pdf attachment",
			subject:     "Quotation",
			text:        "see attached",
			attachments: []string{"harga.pdf"},
			want:        internal.IntakePriceList,
		},
		{
			name:    "order by subject and qty lines",
			subject: "Fwd: order for tomorrow",
			text:    "HEYTEA GENTING\n2ctn mango gold susu\n5pcs avocado",
			want:    internal.IntakeOrder,
		},
		{
			name:    "order by bullet lines",
			subject: "tambah barang",
			text:    "- avocado\n- tomato",
			want:    internal.IntakeOrder,
		},
		{
			name:    "neither",
			subject: "Re: invoice payment",
			text:    "thanks, transferred already",
			want:    internal.IntakeUnknown,
		},
		{
			name:    "empty",
			subject: "",
			text:    "",
			want:    internal.IntakeUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(tc.subject, tc.text, tc.attachments)
			if got.Kind != tc.want {
				t.Fatalf("kind = %s (score %.2f, %s), want %s", got.Kind, got.Score, got.Reason, tc.want)
			}
		})
	}
}

func TestDetectPrefersPriceListOnTie(t *testing.T) {
	// A supplier mail whose body has quantity-shaped lines must still land
	// on the price-list side when the price signal is at least as strong.
	got := Detect("Price List", "2kg carrot 8.00\n5kg tomato 20.00", nil)
	if got.Kind != internal.IntakePriceList {
		t.Fatalf("kind = %s", got.Kind)
	}
}
