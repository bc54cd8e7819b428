package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs
// Pattern: servetix:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG       = 24 * time.Hour   // categories, venues, teams
	TTL_SEMI_STATIC_SHORT = 1 * time.Hour    // match detail
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // upcoming match listings
	TTL_DYNAMIC_SHORT     = 5 * time.Minute  // seat map
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "servetix"
)

// ================== MATCHES MODULE ==================

const (
	CACHE_KEY_MATCHES_UPCOMING = CACHE_PREFIX + ":matches:upcoming" // + :limit:X
	CACHE_KEY_MATCH_DETAIL     = CACHE_PREFIX + ":matches:detail:"  // + match-id
	CACHE_KEY_CATEGORIES_ALL   = CACHE_PREFIX + ":categories:all"
)

const (
	TTL_MATCH_UPCOMING = TTL_SEMI_STATIC_QUICK
	TTL_MATCH_DETAIL   = TTL_SEMI_STATIC_SHORT
	TTL_CATEGORIES     = TTL_STATIC_LONG
)

// ================== VENUES MODULE ==================

const (
	CACHE_KEY_VENUES_ALL = CACHE_PREFIX + ":venues:all"
	CACHE_KEY_TEAMS_ALL  = CACHE_PREFIX + ":teams:all"
)

const (
	TTL_VENUES = TTL_STATIC_LONG
	TTL_TEAMS  = TTL_STATIC_LONG
)

// ================== SEATS MODULE ==================

// The seat map is display only; reservations never read it.
const (
	CACHE_KEY_SEAT_MAP = CACHE_PREFIX + ":seats:map:match:" // + match-id
)

const (
	TTL_SEAT_MAP = TTL_DYNAMIC_SHORT
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_DASHBOARD = CACHE_PREFIX + ":analytics:dashboard"
	CACHE_KEY_ANALYTICS_MATCH     = CACHE_PREFIX + ":analytics:match:" // + match-id
)

const (
	TTL_ANALYTICS = 2 * time.Minute
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_MATCH_ALL = CACHE_PREFIX + ":matches:*"
	PATTERN_INVALIDATE_SEATS     = CACHE_PREFIX + ":seats:*:match:" // + match-id
)

// ================== KEY BUILDERS ==================

func BuildMatchDetailKey(matchID uint) string {
	return fmt.Sprintf("%s%d", CACHE_KEY_MATCH_DETAIL, matchID)
}

func BuildUpcomingMatchesKey(limit int) string {
	return fmt.Sprintf("%s:limit:%d", CACHE_KEY_MATCHES_UPCOMING, limit)
}

func BuildSeatMapKey(matchID uint) string {
	return fmt.Sprintf("%s%d", CACHE_KEY_SEAT_MAP, matchID)
}

// BuildSeatInvalidationPattern matches every seat key of a match
func BuildSeatInvalidationPattern(matchID uint) string {
	return fmt.Sprintf("%s%d", PATTERN_INVALIDATE_SEATS, matchID)
}

func BuildMatchSalesKey(matchID uint) string {
	return fmt.Sprintf("%s%d", CACHE_KEY_ANALYTICS_MATCH, matchID)
}
