package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"sofia-api/calendar"
	"sofia-api/domain"
)

// Tables stores days in Azure Table Storage, partitioned by month with the
// ISO date as row key.
type Tables struct {
	svc   *aztables.ServiceClient
	table *aztables.Client
	name  string
}

// NewTables creates a Tables store from the given connection string.
func NewTables(connStr, table string) (*Tables, error) {
	if connStr == "" {
		return nil, errors.New("STORAGE_CONNECTION_STRING is not set")
	}
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{svc: svc, table: svc.NewClient(table), name: table}, nil
}

type dayEntity struct {
	aztables.Entity
	Notes string `json:"Notes,omitempty"`
	Mood  string `json:"Mood,omitempty"`
}

func decodeDayEntity(data []byte) (domain.DayRecord, error) {
	var ent dayEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.DayRecord{}, err
	}
	return decodeRecord(ent.RowKey, []byte(ent.Notes), []byte(ent.Mood))
}

func (t *Tables) Source() string { return "tables" }

func (t *Tables) EnsureSchema(ctx context.Context) error {
	_, err := t.svc.CreateTable(ctx, t.name, nil)
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", t.name, err)
	}
	return nil
}

func (t *Tables) FetchMonth(ctx context.Context, month string) ([]domain.DayRecord, error) {
	if _, err := calendar.ParseMonthKey(month); err != nil {
		return nil, err
	}
	filter := "PartitionKey eq '" + month + "'"
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	records := []domain.DayRecord{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			rec, err := decodeDayEntity(e)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func (t *Tables) GetDay(ctx context.Context, iso string) (domain.DayRecord, bool, error) {
	month, err := calendar.MonthOfISO(iso)
	if err != nil {
		return domain.DayRecord{}, false, err
	}
	resp, err := t.table.GetEntity(ctx, month, iso, nil)
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return domain.DayRecord{}, false, nil
	}
	if err != nil {
		return domain.DayRecord{}, false, err
	}
	rec, err := decodeDayEntity(resp.Value)
	if err != nil {
		return domain.DayRecord{}, false, err
	}
	return rec, true, nil
}

func (t *Tables) SaveNotes(ctx context.Context, iso string, notes []domain.Note) error {
	payload, err := encodeNotes(notes)
	if err != nil {
		return err
	}
	return t.merge(ctx, iso, dayEntity{Notes: string(payload)})
}

func (t *Tables) SaveMoods(ctx context.Context, iso string, moods domain.MoodSet) error {
	payload, err := encodeMoods(moods)
	if err != nil {
		return err
	}
	return t.merge(ctx, iso, dayEntity{Mood: string(payload)})
}

// merge upserts only the populated columns of ent so notes and mood stay
// independent.
func (t *Tables) merge(ctx context.Context, iso string, ent dayEntity) error {
	month, err := calendar.MonthOfISO(iso)
	if err != nil {
		return err
	}
	ent.PartitionKey = month
	ent.RowKey = iso
	data, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	mode := aztables.UpdateModeMerge
	if _, err := t.table.UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{UpdateMode: mode}); err != nil {
		return fmt.Errorf("upsert day %s: %w", iso, err)
	}
	return nil
}

func (t *Tables) Ping(ctx context.Context) error {
	one := int32(1)
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Top: &one})
	if pager.More() {
		_, err := pager.NextPage(ctx)
		return err
	}
	return nil
}

func (t *Tables) Close() error { return nil }
