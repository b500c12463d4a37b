package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/brewrec/core"
)

type recorded struct {
	userID, targetID int64
	tt               core.TargetType
	bt               core.BehaviorType
}

type fakeRecorder struct{ got []recorded }

func (f *fakeRecorder) RecordEvent(_ context.Context, userID int64, tt core.TargetType, targetID int64, bt core.BehaviorType) error {
	f.got = append(f.got, recorded{userID, targetID, tt, bt})
	return nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"user_id":1,"target_type":"post","target_id":2,"behavior":"like"}`, false},
		{"upper case", `{"user_id":1,"target_type":"BEVERAGE","target_id":3,"behavior":"FAVORITE"}`, false},
		{"bad json", `{"user_id":`, true},
		{"zero user", `{"user_id":0,"target_type":"post","target_id":2,"behavior":"like"}`, true},
		{"unknown target", `{"user_id":1,"target_type":"song","target_id":2,"behavior":"like"}`, true},
		{"unknown behavior", `{"user_id":1,"target_type":"post","target_id":2,"behavior":"poke"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			err := Handle(context.Background(), rec, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Handle() err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !core.IsInvalidInput(err) {
					t.Errorf("err = %v, want INVALID_INPUT", err)
				}
				if len(rec.got) != 0 {
					t.Errorf("invalid message recorded: %+v", rec.got)
				}
				return
			}
			if len(rec.got) != 1 {
				t.Fatalf("recorded %d events, want 1", len(rec.got))
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(7, core.TargetBar, 9, core.BehaviorComment, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatal(err)
	}
	msg, tt, bt, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if msg.UserID != 7 || msg.TargetID != 9 || tt != core.TargetBar || bt != core.BehaviorComment || msg.Timestamp != 1700000000 {
		t.Errorf("decoded = %+v %s %s", msg, tt, bt)
	}
}

func TestNewKafkaConsumer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  KafkaConfig
		rec  Recorder
	}{
		{"no brokers", KafkaConfig{Topic: "behaviors"}, &fakeRecorder{}},
		{"no topic", KafkaConfig{Brokers: []string{"localhost:9092"}}, &fakeRecorder{}},
		{"no recorder", KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "behaviors"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewKafkaConsumer(tt.cfg, tt.rec); !core.IsInvalidInput(err) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}
