package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// LongSpec describes one long-form video item in the schedule.
type LongSpec struct {
	Clip       string `json:"clip"`
	TextCTA    string `json:"textCTA"`
	VideoCTA   string `json:"videoCTA"`
	TitleIndex int    `json:"title"`
	PostTime   string `json:"postTime"`
}

// Complete reports whether the item carries every field rendering and
// scheduling require. Incomplete items are skipped, not failed.
func (s *LongSpec) Complete() bool {
	return s.Clip != "" && s.TextCTA != "" && s.VideoCTA != "" && s.PostTime != ""
}

// ShortSpec describes one vertical short item in the schedule.
type ShortSpec struct {
	Clip       string `json:"clip"`
	MusicTrack string `json:"musicTrack"`
	TextCTA    string `json:"textCTA"`
	VideoCTA   string `json:"videoCTA"`
	PostTime   string `json:"postTime"`
}

// Complete reports whether the short has its required clip/CTA/time triple.
func (s *ShortSpec) Complete() bool {
	return s.Clip != "" && s.TextCTA != "" && s.VideoCTA != "" && s.PostTime != ""
}

// ReelSpec describes one Instagram reel item in the schedule.
type ReelSpec struct {
	Clip           string `json:"clip"`
	MusicTrack     string `json:"musicTrack"`
	TextCTA        string `json:"textCTA"`
	DescriptionCTA string `json:"descriptionCTA"`
	PostTime       string `json:"postTime"`
}

// Complete reports whether the reel has its required fields. The description
// CTA is optional.
func (s *ReelSpec) Complete() bool {
	return s.Clip != "" && s.TextCTA != "" && s.PostTime != ""
}

// ChannelDay is the content block of one YouTube channel for one day.
type ChannelDay struct {
	Long   *LongSpec   `json:"long,omitempty"`
	Shorts []ShortSpec `json:"shorts,omitempty"`
}

// AccountDay is the content block of one Instagram account for one day.
type AccountDay struct {
	Reels []ReelSpec `json:"reels,omitempty"`
}

// YouTubeCredentials holds the OAuth refresh-token triple for one channel.
type YouTubeCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether all three credential fields are present.
func (c *YouTubeCredentials) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// InstagramCredentials holds the login pair for one account.
type InstagramCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Valid reports whether both credential fields are present.
func (c *InstagramCredentials) Valid() bool {
	return c.Username != "" && c.Password != ""
}

// ChannelSchedule is one channel's calendar: day keys mapped to content
// blocks, plus the channel's credentials. In the stored JSON the day keys
// and the "credentials" key share one object, so unmarshalling splits them.
type ChannelSchedule struct {
	Days        map[DayKey]ChannelDay
	Credentials YouTubeCredentials
}

// UnmarshalJSON splits the mixed channel object into day blocks and
// credentials.
func (s *ChannelSchedule) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Days = make(map[DayKey]ChannelDay, len(raw))
	for key, msg := range raw {
		if key == "credentials" {
			if err := json.Unmarshal(msg, &s.Credentials); err != nil {
				return err
			}
			continue
		}
		if !strings.HasPrefix(key, "day") {
			continue
		}
		var day ChannelDay
		if err := json.Unmarshal(msg, &day); err != nil {
			return err
		}
		s.Days[DayKey(key)] = day
	}
	return nil
}

// AccountSchedule is one Instagram account's calendar plus credentials.
type AccountSchedule struct {
	Days        map[DayKey]AccountDay
	Credentials InstagramCredentials
}

// UnmarshalJSON splits the mixed account object into day blocks and
// credentials.
func (s *AccountSchedule) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Days = make(map[DayKey]AccountDay, len(raw))
	for key, msg := range raw {
		if key == "credentials" {
			if err := json.Unmarshal(msg, &s.Credentials); err != nil {
				return err
			}
			continue
		}
		if !strings.HasPrefix(key, "day") {
			continue
		}
		var day AccountDay
		if err := json.Unmarshal(msg, &day); err != nil {
			return err
		}
		s.Days[DayKey(key)] = day
	}
	return nil
}

// ScheduleConfig is the full posting calendar, read-only per run.
type ScheduleConfig struct {
	YouTubeChannels   map[string]ChannelSchedule `json:"youtubeChannels"`
	InstagramAccounts map[string]AccountSchedule `json:"instagramAccounts"`
}

// Valid reports whether the config can drive a run at all.
func (c *ScheduleConfig) Valid() bool {
	return c != nil && len(c.YouTubeChannels) > 0
}

// ChannelIDs returns the channel ids in stable calendar order.
func (c *ScheduleConfig) ChannelIDs() []string {
	ids := make([]string, 0, len(c.YouTubeChannels))
	for id := range c.YouTubeChannels {
		ids = append(ids, id)
	}
	sortNumericSuffix(ids)
	return ids
}

// AccountIDs returns the Instagram account ids in stable calendar order.
func (c *ScheduleConfig) AccountIDs() []string {
	ids := make([]string, 0, len(c.InstagramAccounts))
	for id := range c.InstagramAccounts {
		ids = append(ids, id)
	}
	sortNumericSuffix(ids)
	return ids
}

// UnitIDs returns every processing unit for one day: all channels first,
// then all tagged accounts.
func (c *ScheduleConfig) UnitIDs() []string {
	units := c.ChannelIDs()
	for _, acc := range c.AccountIDs() {
		units = append(units, UnitForAccount(acc))
	}
	return units
}

// ReferenceDayKeys returns the sorted day keys of the reference channel (the
// first channel in calendar order), the set day advancement wraps over.
func (c *ScheduleConfig) ReferenceDayKeys() []DayKey {
	channels := c.ChannelIDs()
	if len(channels) == 0 {
		return nil
	}
	sched := c.YouTubeChannels[channels[0]]
	keys := make([]DayKey, 0, len(sched.Days))
	for k := range sched.Days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// HasDay reports whether the reference channel's calendar contains the key.
func (c *ScheduleConfig) HasDay(day DayKey) bool {
	for _, k := range c.ReferenceDayKeys() {
		if k == day {
			return true
		}
	}
	return false
}

// sortNumericSuffix orders ids like channel2 before channel10 by comparing
// any trailing integer numerically.
func sortNumericSuffix(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		pi, ni := splitNumericSuffix(ids[i])
		pj, nj := splitNumericSuffix(ids[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
}

func splitNumericSuffix(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n := 0
	for _, r := range s[i:] {
		n = n*10 + int(r-'0')
	}
	return s[:i], n
}
