package event

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNew はNew関数でイベントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("NewspaperCreatedDataでイベントを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		data := NewspaperCreatedData{
			ID:          "n1",
			Title:       "El Día",
			CountryCode: "ESP",
		}

		before := time.Now().UTC()
		ev, err := New("n1", AggregateTypeNewspaper, TypeNewspaperCreated, data)
		after := time.Now().UTC()

		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.AggregateID != "n1" {
			t.Errorf("AggregateID = %q, want %q", ev.AggregateID, "n1")
		}
		if ev.AggregateType != AggregateTypeNewspaper {
			t.Errorf("AggregateType = %q, want %q", ev.AggregateType, AggregateTypeNewspaper)
		}
		if ev.EventType != TypeNewspaperCreated {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeNewspaperCreated)
		}
		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}

		var raw map[string]string
		if err := json.Unmarshal(ev.Data, &raw); err != nil {
			t.Fatalf("Dataのデシリアライズに失敗: %v", err)
		}
		if raw["country_code"] != "ESP" {
			t.Errorf("Data.country_code = %q, want %q", raw["country_code"], "ESP")
		}
		if raw["title"] != "El Día" {
			t.Errorf("Data.title = %q, want %q", raw["title"], "El Día")
		}
	})

	t.Run("イベントごとに異なるIDが採番されること", func(t *testing.T) {
		t.Parallel()

		ev1, err := New("n1", AggregateTypeNewspaper, TypeNewspaperDeleted, NewspaperDeletedData{ID: "n1"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		ev2, err := New("n1", AggregateTypeNewspaper, TypeNewspaperDeleted, NewspaperDeletedData{ID: "n1"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if ev1.ID == ev2.ID {
			t.Errorf("IDが重複している: %s", ev1.ID)
		}
	})

	t.Run("シリアライズできない値はエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := New("n1", AggregateTypeNewspaper, TypeNewspaperCreated, make(chan int)); err == nil {
			t.Fatal("チャネルのシリアライズはエラーになるべき")
		}
	})
}

// TestDecodeData はDecodeData関数を検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("NewspaperCreatedDataに復元できること", func(t *testing.T) {
		t.Parallel()

		ev, err := New("n2", AggregateTypeNewspaper, TypeNewspaperCreated, NewspaperCreatedData{
			ID:          "n2",
			Title:       "The Times",
			CountryCode: "GBR",
		})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		got, err := DecodeData[NewspaperCreatedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if got.ID != "n2" || got.Title != "The Times" || got.CountryCode != "GBR" {
			t.Errorf("DecodeData() = %+v", got)
		}
	})

	t.Run("更新フィールドの一覧を復元できること", func(t *testing.T) {
		t.Parallel()

		ev, err := New("n3", AggregateTypeNewspaper, TypeNewspaperUpdated, NewspaperUpdatedData{
			Fields: []string{"title", "url"},
		})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		got, err := DecodeData[NewspaperUpdatedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if len(got.Fields) != 2 || got.Fields[0] != "title" || got.Fields[1] != "url" {
			t.Errorf("Fields = %v, want [title url]", got.Fields)
		}
	})

	t.Run("不正なJSONではエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev := &Event{Data: json.RawMessage(`{"id":`)}
		if _, err := DecodeData[NewspaperCreatedData](ev); err == nil {
			t.Fatal("不正なJSONはエラーになるべき")
		}
	})

	t.Run("nilイベントではエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := DecodeData[NewspaperCreatedData](nil); err == nil {
			t.Fatal("nilイベントはエラーになるべき")
		}
	})
}

// TestEventJSONFieldNames はEventのJSONフィールド名がスネークケースであることを検証する。
func TestEventJSONFieldNames(t *testing.T) {
	t.Parallel()

	ev, err := New("n4", AggregateTypeNewspaper, TypeNewspaperCreated, NewspaperCreatedData{ID: "n4"})
	if err != nil {
		t.Fatalf("New()でエラーが発生: %v", err)
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("JSONシリアライズに失敗: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("JSONデシリアライズに失敗: %v", err)
	}
	for _, key := range []string{"id", "aggregate_id", "aggregate_type", "event_type", "data", "created_at"} {
		if _, ok := m[key]; !ok {
			t.Errorf("JSONに %q フィールドが存在しない", key)
		}
	}
}
