package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-vocab/internal/domain"
)

// hoursPerDay converts fractional interval days into a time.Duration.
const hoursPerDay = 24

// calculateNewEaseFactor applies the SM-2 ease update for a review.
//
// For a correct recall the classic SM-2 formula is used:
//
//	ef' = ef + (0.1 - q*(0.08 + q*0.02)), where q = 5 - rating
//
// so a perfect answer raises the ease by 0.1, a rating of 4 leaves it unchanged
// and a rating of 3 lowers it by 0.14. A lapse subtracts params.LapseEasePenalty.
// The result is always clamped to params.MinEaseFactor.
func calculateNewEaseFactor(
	currentEF float64,
	rating domain.QualityRating,
	params *Params,
) float64 {
	var newEF float64
	if rating.IsCorrect() {
		q := float64(domain.MaxQualityRating - rating)
		newEF = currentEF + (0.1 - q*(0.08+q*0.02))
	} else {
		newEF = currentEF - params.LapseEasePenalty
	}

	return math.Max(params.MinEaseFactor, newEF)
}

// calculateNewInterval determines the interval in days after a review.
//
// Correct recalls follow the SM-2 ladder: the first review yields
// FirstIntervalDays, the second SecondIntervalDays, and every later review
// multiplies the current interval by the already updated ease factor, rounded to
// whole days. A lapse shrinks the interval by LapsePenaltyFactor, rounded the same
// way, but never below MinRelearnIntervalDays. Every result is capped at
// MaxIntervalDays.
func calculateNewInterval(
	currentInterval float64,
	reviewCount int,
	newEF float64,
	rating domain.QualityRating,
	params *Params,
) float64 {
	return math.Min(
		params.MaxIntervalDays,
		uncappedInterval(currentInterval, reviewCount, newEF, rating, params),
	)
}

func uncappedInterval(
	currentInterval float64,
	reviewCount int,
	newEF float64,
	rating domain.QualityRating,
	params *Params,
) float64 {
	if !rating.IsCorrect() {
		return math.Max(
			params.MinRelearnIntervalDays,
			math.Round(currentInterval*params.LapsePenaltyFactor),
		)
	}

	switch reviewCount {
	case 0:
		return params.FirstIntervalDays
	case 1:
		return params.SecondIntervalDays
	default:
		return math.Round(currentInterval * newEF)
	}
}

// calculateNextReviewTime adds a fractional number of days to the review time.
// Whole days go through AddDate so long intervals cannot overflow time.Duration.
func calculateNextReviewTime(reviewedAt time.Time, intervalDays float64) time.Time {
	whole := math.Floor(intervalDays)
	fraction := intervalDays - whole
	return reviewedAt.
		AddDate(0, 0, int(whole)).
		Add(time.Duration(fraction * hoursPerDay * float64(time.Hour)))
}

// calculateNewStatus applies the lifecycle rules to an already updated card.
// At most one forward step is taken per review. before is the card state prior
// to this review and previous the review that preceded it, if any.
func calculateNewStatus(
	before *domain.Card,
	after *domain.Card,
	correct bool,
	previous *domain.ReviewEvent,
	params *Params,
) domain.CardStatus {
	switch before.Status {
	case domain.CardStatusNew:
		return domain.CardStatusLearning

	case domain.CardStatusLearning:
		if correct &&
			after.ConsecutiveCorrect >= params.GraduatingStreak &&
			after.IntervalDays > params.GraduatingIntervalDays {
			return domain.CardStatusReviewing
		}
		return domain.CardStatusLearning

	case domain.CardStatusReviewing:
		if !correct {
			return domain.CardStatusLearning
		}
		if after.IntervalDays > params.MasteryIntervalDays &&
			after.EaseFactor >= before.EaseFactor &&
			previous != nil && previous.EaseNotDecreased() {
			return domain.CardStatusMastered
		}
		return domain.CardStatusReviewing

	case domain.CardStatusMastered:
		if !correct {
			return domain.CardStatusLearning
		}
		return domain.CardStatusMastered
	}

	return before.Status
}

// calculateNextState is the pure scheduling step. The input card is never
// modified; the returned card carries the new scheduling fields and status.
func calculateNextState(
	card *domain.Card,
	rating domain.QualityRating,
	reviewedAt time.Time,
	previous *domain.ReviewEvent,
	params *Params,
) *domain.Card {
	reviewedAt = reviewedAt.UTC()
	correct := rating.IsCorrect()
	next := card.Clone()

	if correct {
		next.ConsecutiveCorrect = card.ConsecutiveCorrect + 1
	} else {
		next.Lapses = card.Lapses + 1
		next.ConsecutiveCorrect = 0
	}

	next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, rating, params)
	next.IntervalDays = calculateNewInterval(
		card.IntervalDays,
		card.ReviewCount,
		next.EaseFactor,
		rating,
		params,
	)

	next.ReviewCount = card.ReviewCount + 1
	next.NextReviewAt = calculateNextReviewTime(reviewedAt, next.IntervalDays)
	next.LastReviewedAt = &reviewedAt
	next.Status = calculateNewStatus(card, next, correct, previous, params)

	return next
}
