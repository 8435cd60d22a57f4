package domain

import (
	"encoding/json"
	"testing"
)

const sampleSchedule = `{
  "youtubeChannels": {
    "channel1": {
      "credentials": {"client_id": "id1", "client_secret": "sec1", "refresh_token": "tok1"},
      "day1": {
        "long": {"clip": "Alice-001", "textCTA": "cta-a", "videoCTA": "cta-b", "title": 2, "postTime": "14:00"},
        "shorts": [
          {"clip": "Alice-002", "musicTrack": "track1", "textCTA": "cta-a", "videoCTA": "cta-b", "postTime": "16:00"}
        ]
      },
      "day2": {
        "long": {"clip": "Alice-003", "textCTA": "cta-a", "videoCTA": "cta-b", "title": 1, "postTime": "14:00"}
      }
    },
    "channel2": {
      "credentials": {"client_id": "id2", "client_secret": "sec2", "refresh_token": "tok2"},
      "day1": {}
    }
  },
  "instagramAccounts": {
    "account1": {
      "credentials": {"username": "user1", "password": "pass1"},
      "day1": {
        "reels": [
          {"clip": "Alice-002", "musicTrack": "track1", "textCTA": "cta-a", "descriptionCTA": "desc", "postTime": "18:00"}
        ]
      }
    }
  }
}`

func TestScheduleConfigUnmarshal(t *testing.T) {
	var cfg ScheduleConfig
	if err := json.Unmarshal([]byte(sampleSchedule), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	ch, ok := cfg.YouTubeChannels["channel1"]
	if !ok {
		t.Fatal("channel1 missing")
	}
	if !ch.Credentials.Valid() {
		t.Error("channel1 credentials should be valid")
	}
	if ch.Credentials.RefreshToken != "tok1" {
		t.Errorf("refresh token = %s, want tok1", ch.Credentials.RefreshToken)
	}

	day1, ok := ch.Days["day1"]
	if !ok {
		t.Fatal("channel1 day1 missing")
	}
	if day1.Long == nil || day1.Long.Clip != "Alice-001" {
		t.Errorf("day1 long clip wrong: %+v", day1.Long)
	}
	if day1.Long.TitleIndex != 2 {
		t.Errorf("title index = %d, want 2", day1.Long.TitleIndex)
	}
	if len(day1.Shorts) != 1 {
		t.Errorf("day1 shorts = %d, want 1", len(day1.Shorts))
	}

	// The credentials key must not leak into the day map
	if _, ok := ch.Days["credentials"]; ok {
		t.Error("credentials leaked into the day map")
	}

	acc, ok := cfg.InstagramAccounts["account1"]
	if !ok {
		t.Fatal("account1 missing")
	}
	if acc.Credentials.Username != "user1" {
		t.Errorf("username = %s, want user1", acc.Credentials.Username)
	}
	if len(acc.Days["day1"].Reels) != 1 {
		t.Errorf("account1 day1 reels = %d, want 1", len(acc.Days["day1"].Reels))
	}
}

func TestScheduleConfigUnitIDs(t *testing.T) {
	var cfg ScheduleConfig
	if err := json.Unmarshal([]byte(sampleSchedule), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	units := cfg.UnitIDs()
	want := []string{"channel1", "channel2", "instagram_account1"}
	if len(units) != len(want) {
		t.Fatalf("units = %v, want %v", units, want)
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("units[%d] = %s, want %s", i, units[i], want[i])
		}
	}
}

func TestChannelIDsNumericOrder(t *testing.T) {
	cfg := ScheduleConfig{YouTubeChannels: map[string]ChannelSchedule{
		"channel10": {},
		"channel2":  {},
		"channel1":  {},
	}}

	ids := cfg.ChannelIDs()
	want := []string{"channel1", "channel2", "channel10"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestReferenceDayKeys(t *testing.T) {
	var cfg ScheduleConfig
	if err := json.Unmarshal([]byte(sampleSchedule), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	keys := cfg.ReferenceDayKeys()
	if len(keys) != 2 || keys[0] != "day1" || keys[1] != "day2" {
		t.Errorf("reference keys = %v, want [day1 day2]", keys)
	}
	if !cfg.HasDay("day2") {
		t.Error("HasDay(day2) should be true")
	}
	if cfg.HasDay("day3") {
		t.Error("HasDay(day3) should be false")
	}
}

func TestSpecComplete(t *testing.T) {
	long := LongSpec{Clip: "c", TextCTA: "t", VideoCTA: "v", PostTime: "10:00"}
	if !long.Complete() {
		t.Error("full long spec should be complete")
	}
	long.PostTime = ""
	if long.Complete() {
		t.Error("long spec without post time should be incomplete")
	}

	// Description CTA is optional on reels
	reel := ReelSpec{Clip: "c", TextCTA: "t", PostTime: "10:00"}
	if !reel.Complete() {
		t.Error("reel without description CTA should still be complete")
	}
}
