package zone

import (
	"testing"

	"ecobins/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		container model.Container
		want      model.Status
	}{
		{"locked wins over full", model.Container{Locked: true, Full: true, CurrentLoad: 0, CapacityMax: 10}, model.StatusLocked},
		{"full", model.Container{Full: true, CurrentLoad: 1, CapacityMax: 10}, model.StatusFull},
		{"near full at 0.8", model.Container{CurrentLoad: 8, CapacityMax: 10}, model.StatusNearFull},
		{"near full exactly at threshold", model.Container{CurrentLoad: 7.5, CapacityMax: 10}, model.StatusNearFull},
		{"ok at 0.7", model.Container{CurrentLoad: 7, CapacityMax: 10}, model.StatusOk},
		{"overloaded is near full", model.Container{CurrentLoad: 12, CapacityMax: 10}, model.StatusNearFull},
		{"zero capacity is ok", model.Container{CurrentLoad: 5, CapacityMax: 0}, model.StatusOk},
		{"negative capacity is ok", model.Container{CurrentLoad: 5, CapacityMax: -1}, model.StatusOk},
		{"zero capacity still locked", model.Container{Locked: true, CapacityMax: 0}, model.StatusLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.container))
		})
	}
}

func fixtureContainers() []model.Container {
	return []model.Container{
		{ID: 1, ZoneID: 10, Full: true, CapacityMax: 10},
		{ID: 2, ZoneID: 20, Locked: true, CapacityMax: 10},
		{ID: 3, ZoneID: 10, CurrentLoad: 9, CapacityMax: 10},
		{ID: 4, ZoneID: 10, Locked: true, CapacityMax: 10},
		{ID: 5, ZoneID: 30, Full: true, CapacityMax: 10},
		{ID: 6, ZoneID: 20, CapacityMax: 10},
		{ID: 7, ZoneID: 10, Full: true, CapacityMax: 0},
	}
}

func ids(containers []model.Container) []int64 {
	out := make([]int64, len(containers))
	for i, c := range containers {
		out[i] = c.ID
	}
	return out
}

func TestFilterByZones(t *testing.T) {
	containers := fixtureContainers()

	assert.Equal(t, []int64{1, 2, 3, 4, 6, 7}, ids(FilterByZones(containers, NewZoneSet(20, 10))))
	assert.Equal(t, []int64{5}, ids(FilterByZones(containers, NewZoneSet(30))))

	assert.Empty(t, FilterByZones(containers, NewZoneSet()))
	assert.Empty(t, FilterByZones(containers, nil))
	assert.NotNil(t, FilterByZones(containers, nil))
}

func TestFilterActionable(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 4, 5, 7}, ids(FilterActionable(fixtureContainers())))
	assert.Empty(t, FilterActionable(nil))
}

func TestFilterComposition(t *testing.T) {
	containers := fixtureContainers()
	zoneIDs := NewZoneSet(10, 20)

	for _, got := range [][]model.Container{
		FilterActionable(FilterByZones(containers, zoneIDs)),
		FilterByZones(FilterActionable(containers), zoneIDs),
	} {
		assert.Equal(t, []int64{1, 2, 4, 7}, ids(got))
		for _, c := range got {
			assert.True(t, zoneIDs.Has(c.ZoneID))
			assert.True(t, ClassifyStatus(c).Actionable())
		}
	}
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	containers := fixtureContainers()
	before := ids(containers)

	out := FilterByZones(containers, NewZoneSet(10))
	out[0].ID = 99

	assert.Equal(t, before, ids(containers))
}

func TestScope(t *testing.T) {
	containers := fixtureContainers()

	assert.Len(t, All().Containers(containers), len(containers))
	assert.Equal(t, []int64{2, 6}, ids(Only(20).Containers(containers)))
	assert.Empty(t, Scope{}.Containers(containers))

	zones := []model.Zone{{ID: 30}, {ID: 10}, {ID: 20}}
	assert.Equal(t, []int64{30, 20}, model.ZoneIDs(Only(20, 30).Zones(zones)))
}

func TestSortByDistance(t *testing.T) {
	near := model.LatLng{Lat: 19.4326, Lng: -99.1332}
	mid := model.LatLng{Lat: 19.44, Lng: -99.14}
	far := model.LatLng{Lat: 19.60, Lng: -99.30}

	containers := []model.Container{
		{ID: 1, Position: &far},
		{ID: 2},
		{ID: 3, Position: &near},
		{ID: 4, Position: &mid},
		{ID: 5},
		{ID: 6, Position: &near},
	}

	sorted := SortByDistance(containers, model.LatLng{Lat: 19.4326, Lng: -99.1332})
	assert.Equal(t, []int64{3, 6, 4, 1, 2, 5}, ids(sorted))
	assert.Equal(t, int64(1), containers[0].ID, "input order is untouched")
}

func TestSummarize(t *testing.T) {
	summaries := Summarize(fixtureContainers())

	assert.Equal(t, Summary{Total: 4, Full: 2, Locked: 1}, summaries[10])
	assert.Equal(t, Summary{Total: 2, Locked: 1}, summaries[20])
	assert.Equal(t, Summary{Total: 1, Full: 1}, summaries[30])
}
