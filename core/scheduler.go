// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"math"
	"time"
)

// Day is the unit review intervals are expressed in.
const Day = 24 * time.Hour

// FirstReviewInterval schedules a word that has never been reviewed.
const FirstReviewInterval = Day

// Accuracy returns correct/total, or 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// UpdateMastery applies one review outcome to mastery. accuracy is the
// cumulative rate including this review. The result stays within 0-100.
func UpdateMastery(mastery, difficulty int, correct bool, accuracy float64) int {
	if correct {
		mastery = min(100, mastery+(10-2*difficulty))
	} else {
		mastery = max(0, mastery-(5+difficulty))
	}
	if accuracy >= 0.8 {
		mastery = min(100, mastery+5)
	} else if accuracy < 0.5 {
		mastery = max(0, mastery-3)
	}
	return clamp(mastery, 0, 100)
}

// IntervalDays returns the review interval in days for a word with the given
// mastery, accuracy, review count and difficulty.
//
//	mastery >= 80, accuracy >= 0.8: min(30, 2^floor(n/3))
//	mastery >= 60, accuracy >= 0.6: min(14, 1.5^floor(n/4))
//	mastery >= 40, accuracy >= 0.4: min(7, 1.3^floor(n/5))
//	otherwise:                      min(3, max(1, n/3))
//
// The chosen interval is divided by difficulty.
func IntervalDays(mastery int, accuracy float64, reviewCount, difficulty int) float64 {
	n := float64(reviewCount)
	var days float64
	switch {
	case mastery >= 80 && accuracy >= 0.8:
		days = math.Min(30, math.Pow(2, math.Floor(n/3)))
	case mastery >= 60 && accuracy >= 0.6:
		days = math.Min(14, math.Pow(1.5, math.Floor(n/4)))
	case mastery >= 40 && accuracy >= 0.4:
		days = math.Min(7, math.Pow(1.3, math.Floor(n/5)))
	default:
		days = math.Min(3, math.Max(1, n/3))
	}
	if difficulty < 1 {
		difficulty = 1
	}
	return days / float64(difficulty)
}

// NextReviewInterval is IntervalDays as a duration.
func NextReviewInterval(mastery int, accuracy float64, reviewCount, difficulty int) time.Duration {
	return time.Duration(IntervalDays(mastery, accuracy, reviewCount, difficulty) * float64(Day))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
