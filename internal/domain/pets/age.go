package pets

import (
	"fmt"
	"time"

	"vet-clinic/internal/platform/apperr"
)

type Age struct {
	Years  int
	Months int
}

var errFutureBirthday = apperr.BadRequest("Birthday cannot be in the future.")

// ComputeAge calcula años y meses completos entre birthday y now (a nivel fecha).
// Un mes se completa al llegar al mismo día del mes, o al último día si el mes
// actual es más corto (31-ene -> 28-feb cuenta como 1 mes).
func ComputeAge(birthday, now time.Time) (Age, error) {
	by, bm, bd := birthday.Date()
	ny, nm, nd := now.Date()

	b := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	if b.After(n) {
		return Age{}, errFutureBirthday
	}

	total := (ny-by)*12 + int(nm-bm)
	if nd < bd && nd < daysIn(ny, nm) {
		total--
	}

	return Age{Years: total / 12, Months: total % 12}, nil
}

// ValidateAge compara la edad enviada contra la calculada y devuelve la calculada.
func ValidateAge(birthday, now time.Time, years, months int) (Age, error) {
	computed, err := ComputeAge(birthday, now)
	if err != nil {
		return Age{}, err
	}
	if computed.Years != years || computed.Months != months {
		return Age{}, apperr.BadRequest(fmt.Sprintf(
			"Age mismatch! The computed age based on birthday is %d years and %d months.",
			computed.Years, computed.Months,
		))
	}
	return computed, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
