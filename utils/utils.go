package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CourseIDPrefix precedes the numeric part of every business course id.
const CourseIDPrefix = "CRS"

// FirstCourseNumber is used when no course exists yet.
const FirstCourseNumber = 1001

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LikeEscape must follow every LIKE that takes a LikeContains pattern.
const LikeEscape = "ESCAPE '!'"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// LikeContains builds a lower-cased LIKE pattern matching s literally
// anywhere in the value.
func LikeContains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// CalculateFinalPrice applies a percentage discount and rounds to 2 decimals.
// Inputs are not range checked.
func CalculateFinalPrice(price, discountPercentage float64) float64 {
	final := price - (price*discountPercentage)/100
	return math.Round(final*100) / 100
}

// GenerateRegistrationNumber returns "REG" + last 6 digits of the unix
// millisecond clock + 6 base36 characters drawn from a random UUID.
func GenerateRegistrationNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	id := uuid.New()
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(base36[int(id[i])%len(base36)])
	}
	return "REG" + ms + b.String()
}

func FormatCourseID(n int) string {
	return fmt.Sprintf("%s%d", CourseIDPrefix, n)
}

// ParseCourseNumber extracts N from "CRS<N>".
func ParseCourseNumber(courseID string) (int, bool) {
	if !strings.HasPrefix(courseID, CourseIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(courseID, CourseIDPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
