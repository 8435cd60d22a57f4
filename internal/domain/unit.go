package domain

import "strings"

// instagramUnitPrefix tags Instagram account ids inside the shared
// processing-unit id space so they can never collide with channel ids.
const instagramUnitPrefix = "instagram_"

// UnitForChannel returns the processing-unit id for a YouTube channel.
func UnitForChannel(channelID string) string {
	return channelID
}

// UnitForAccount returns the processing-unit id for an Instagram account.
func UnitForAccount(accountID string) string {
	return instagramUnitPrefix + accountID
}

// IsInstagramUnit reports whether the unit id refers to an Instagram account.
func IsInstagramUnit(unitID string) bool {
	return strings.HasPrefix(unitID, instagramUnitPrefix)
}

// AccountForUnit strips the Instagram tag from a unit id. Returns the input
// unchanged when the id is not an Instagram unit.
func AccountForUnit(unitID string) string {
	return strings.TrimPrefix(unitID, instagramUnitPrefix)
}

// ChannelForAccount maps an Instagram account to its paired YouTube channel
// (account1 posts are recorded under channel1's history).
func ChannelForAccount(accountID string) string {
	return "channel" + strings.TrimPrefix(accountID, "account")
}
