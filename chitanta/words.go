/*
words.go - Romanian amount-in-words for printed receipts

A chitanță carries the total written out ("o sută douăzeci de lei și 50
de bani"). Covers amounts up to 999,999.99 lei, which is far beyond any
monthly maintenance total. Grammar notes encoded below:

  - 1 is "un leu"/"un ban" (singular noun), everything else "lei"/"bani"
  - the connector "de" appears before the noun exactly when the amount's
    last two digits are 00 or 20-99 (e.g. "douăzeci de lei", "o sută de
    lei", but "o sută cinci lei")
  - hundreds and thousands use the feminine forms ("două sute", "două
    mii")
*/
package chitanta

import (
	"fmt"
	"strings"

	"github.com/blocadmin/billing-engine/engine"
)

var wordUnits = []string{
	"", "unu", "doi", "trei", "patru", "cinci", "șase", "șapte", "opt", "nouă",
}

var wordTeens = []string{
	"zece", "unsprezece", "doisprezece", "treisprezece", "paisprezece",
	"cincisprezece", "șaisprezece", "șaptesprezece", "optsprezece", "nouăsprezece",
}

var wordTens = []string{
	"", "", "douăzeci", "treizeci", "patruzeci", "cincizeci",
	"șaizeci", "șaptezeci", "optzeci", "nouăzeci",
}

// feminine forms used before "sute" and "mii"
var wordUnitsFem = []string{
	"", "o", "două", "trei", "patru", "cinci", "șase", "șapte", "opt", "nouă",
}

func underHundred(n int) string {
	switch {
	case n < 10:
		return wordUnits[n]
	case n < 20:
		return wordTeens[n-10]
	default:
		if n%10 == 0 {
			return wordTens[n/10]
		}
		return wordTens[n/10] + " și " + wordUnits[n%10]
	}
}

func underThousand(n int) string {
	if n < 100 {
		return underHundred(n)
	}
	hundreds := n / 100
	noun := "sute"
	if hundreds == 1 {
		noun = "sută"
	}
	head := wordUnitsFem[hundreds] + " " + noun
	if rest := n % 100; rest != 0 {
		return head + " " + underHundred(rest)
	}
	return head
}

func numberInWords(n int) string {
	if n == 0 {
		return "zero"
	}
	if n < 1000 {
		return underThousand(n)
	}

	thousands := n / 1000
	rest := n % 1000

	var head string
	switch {
	case thousands == 1:
		head = "o mie"
	case thousands < 20:
		head = underThousand(thousands) + " mii"
		if thousands == 2 {
			head = "două mii"
		}
	default:
		head = underThousand(thousands) + " de mii"
	}

	if rest == 0 {
		return head
	}
	return head + " " + underThousand(rest)
}

// noun picks the singular/plural noun with its "de" connector.
func noun(n int, singular, plural string) string {
	if n == 0 {
		return plural
	}
	if n == 1 {
		return singular
	}
	if last := n % 100; last >= 1 && last <= 19 {
		return plural
	}
	return "de " + plural
}

// AmountInWords spells a cent-rounded amount in Romanian.
func AmountInWords(a engine.Amount) string {
	rounded := a.Round2()
	cents := rounded.Value.Mul(oneHundredDec).IntPart()
	lei := int(cents / 100)
	bani := int(cents % 100)
	if bani < 0 {
		bani = -bani
	}

	var b strings.Builder
	if lei == 1 {
		b.WriteString("un leu")
	} else {
		b.WriteString(numberInWords(lei))
		b.WriteString(" ")
		b.WriteString(noun(lei, "leu", "lei"))
	}
	if bani > 0 {
		fmt.Fprintf(&b, " și %d %s", bani, noun(bani, "ban", "bani"))
	}
	return b.String()
}

var oneHundredDec = engine.NewAmountFromInt(100).Value
