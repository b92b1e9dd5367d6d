// Package billing computes room charges for a stay from the room's rate table,
// the stay's timestamps and the guest's check-in session.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"hotel-frontdesk/models"
)

type Tier string

const (
	TierHourly  Tier = "hourly"
	TierDaily   Tier = "daily"
	TierNightly Tier = "nightly"
)

const (
	nightlyCheckinHour  = 22
	dailyThresholdHours = 12
	hourlyCapHours      = 6
	loyaltyMinDays      = 3
	lateCheckoutFrom    = 12
	lateCheckoutUntil   = 18
)

var (
	additionalHourRatio   = decimal.RequireFromString("0.8")
	weekendSurchargeRatio = decimal.RequireFromString("0.2")
	loyaltyDiscountRatio  = decimal.RequireFromString("0.1")
	lateCheckoutRatio     = decimal.RequireFromString("0.5")
)

// Breakdown is the itemised result of a charge calculation. Money fields are
// unrounded; only Total is rounded.
type Breakdown struct {
	Tier  Tier `json:"tier"`
	Hours int  `json:"hours"`
	Days  int  `json:"days"`

	RoomTotal         decimal.Decimal `json:"roomTotal"`
	ServiceTotal      decimal.Decimal `json:"serviceTotal"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	Discount          decimal.Decimal `json:"discount"`

	WeekendSurcharge decimal.Decimal `json:"weekendSurcharge"`
	LateCheckoutFee  decimal.Decimal `json:"lateCheckoutFee"`
	LoyaltyDiscount  decimal.Decimal `json:"loyaltyDiscount"`

	// DailyRateApplied marks an hourly stay longer than six hours that was
	// charged the flat daily rate. Tier still reads "hourly" in that case.
	DailyRateApplied bool `json:"dailyRateApplied"`

	Total int64 `json:"total"`
}

type Input struct {
	Rates        models.RateTable
	CheckinTime  time.Time
	CheckoutTime time.Time
	Session      *models.CheckinSession
}

type Calculator struct {
	loc *time.Location
}

// NewCalculator returns a calculator that reads hour-of-day and weekday in
// loc. A nil loc keeps the timestamps' own location.
func NewCalculator(loc *time.Location) *Calculator {
	return &Calculator{loc: loc}
}

func (c *Calculator) local(t time.Time) time.Time {
	if c == nil || c.loc == nil {
		return t
	}
	return t.In(c.loc)
}

// Calculate never fails: missing or negative rates count as zero and the
// optional rates fall back to HourlyRate.
func (c *Calculator) Calculate(in Input) Breakdown {
	checkin := c.local(in.CheckinTime)
	checkout := c.local(in.CheckoutTime)

	hours, days := Elapsed(checkin, checkout)
	b := Breakdown{
		Tier:  Classify(checkin.Hour(), hours),
		Hours: hours,
		Days:  days,
	}
	r := newRates(in.Rates)

	additional := decimal.Zero
	discount := decimal.Zero
	if in.Session != nil {
		additional = Money(in.Session.AdditionalCharges)
		discount = Money(in.Session.Discount)
	}

	switch b.Tier {
	case TierHourly:
		extra := decimal.NewFromInt(int64(max(hours-1, 0)))
		b.RoomTotal = r.firstHour.Add(extra.Mul(r.additionalHour))
		if hours > hourlyCapHours {
			b.RoomTotal = r.daily
			b.DailyRateApplied = true
		}
	case TierDaily:
		b.RoomTotal = decimal.NewFromInt(int64(days)).Mul(r.daily)
		if wd := checkin.Weekday(); wd == time.Saturday || wd == time.Sunday {
			b.WeekendSurcharge = b.RoomTotal.Mul(weekendSurchargeRatio)
			additional = additional.Add(b.WeekendSurcharge)
		}
	case TierNightly:
		later := decimal.NewFromInt(int64(max(days-1, 0)))
		b.RoomTotal = r.nightly.Add(later.Mul(r.daily))
	}

	b.ServiceTotal = ServiceTotal(in.Session)

	if days >= loyaltyMinDays {
		b.LoyaltyDiscount = b.RoomTotal.Mul(loyaltyDiscountRatio)
		discount = discount.Add(b.LoyaltyDiscount)
	}

	if h := checkout.Hour(); b.Tier != TierHourly && h > lateCheckoutFrom && h < lateCheckoutUntil {
		b.LateCheckoutFee = r.hourly.Mul(lateCheckoutRatio)
		additional = additional.Add(b.LateCheckoutFee)
	}

	b.AdditionalCharges = additional
	b.Discount = discount

	total := b.RoomTotal.Add(b.ServiceTotal).Add(additional).Sub(discount).Round(0)
	if total.IsNegative() {
		total = decimal.Zero
	}
	b.Total = total.IntPart()
	return b
}

// ServiceTotal sums unit price times quantity over the session's services.
func ServiceTotal(s *models.CheckinSession) decimal.Decimal {
	total := decimal.Zero
	if s == nil {
		return total
	}
	for _, svc := range s.Services {
		if svc.Quantity <= 0 {
			continue
		}
		total = total.Add(Money(svc.UnitPrice).Mul(decimal.NewFromInt(int64(svc.Quantity))))
	}
	return total
}

type rates struct {
	hourly, daily, nightly    decimal.Decimal
	firstHour, additionalHour decimal.Decimal
}

func newRates(t models.RateTable) rates {
	r := rates{
		hourly:  Money(t.HourlyRate),
		daily:   Money(t.DailyRate),
		nightly: Money(t.NightlyRate),
	}
	r.firstHour = r.hourly
	if t.FirstHourRate != nil {
		r.firstHour = Money(*t.FirstHourRate)
	}
	r.additionalHour = r.hourly.Mul(additionalHourRatio)
	if t.AdditionalHourRate != nil {
		r.additionalHour = Money(*t.AdditionalHourRate)
	}
	return r
}

// Money converts an amount to a decimal, treating negatives as zero.
func Money(v float64) decimal.Decimal {
	if v <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
