package service

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/room-booking/internal/model"
)

func fp(v float64) *float64 { return &v }

func TestNights(t *testing.T) {
    tests := []struct {
        name    string
        in, out time.Time
        want    int
        wantErr bool
    }{
        {name: "three nights", in: day(0), out: day(3), want: 3},
        {name: "partial day rounds up", in: day(0), out: day(1).Add(2 * time.Hour), want: 2},
        {name: "same day", in: day(0), out: day(0), wantErr: true},
        {name: "reversed", in: day(2), out: day(1), wantErr: true},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := Nights(tt.in, tt.out)
            if tt.wantErr {
                asError[*InvalidDateRangeError](t, err)
                return
            }
            require.NoError(t, err)
            assert.Equal(t, tt.want, got)
        })
    }
}

func TestQuoteRoom(t *testing.T) {
    private := model.Room{ID: 1, Price: fp(100)}
    shared := model.Room{ID: 2, IsShared: true, BasePricePerPerson: fp(30), MaxOccupancy: 4}
    sharedFallback := model.Room{ID: 3, IsShared: true, Price: fp(45), MaxOccupancy: 4}

    tests := []struct {
        name   string
        room   model.Room
        guests int
        shared bool
        want   float64
    }{
        {name: "private", room: private, guests: 2, want: 300},
        {name: "shared per guest", room: shared, guests: 2, shared: true, want: 180},
        {name: "shared falls back to price", room: sharedFallback, guests: 1, shared: true, want: 135},
        {name: "shared room taken whole", room: shared, guests: 1, shared: false, want: 360},
        {name: "shared room with price taken whole", room: sharedFallback, guests: 3, want: 135},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := QuoteRoom(tt.room, day(0), day(3), tt.guests, tt.shared)
            require.NoError(t, err)
            assert.Equal(t, tt.want, got)
        })
    }

    _, err := QuoteRoom(model.Room{ID: 9}, day(0), day(1), 1, false)
    asError[*ValidationError](t, err)
}

func TestQuoteRoomIsDeterministic(t *testing.T) {
    room := model.Room{IsShared: true, BasePricePerPerson: fp(33.33), MaxOccupancy: 6}
    first, err := QuoteRoom(room, day(0), day(7), 3, true)
    require.NoError(t, err)
    for i := 0; i < 50; i++ {
        again, err := QuoteRoom(room, day(0), day(7), 3, true)
        require.NoError(t, err)
        assert.Equal(t, first, again)
    }
    assert.Equal(t, 699.93, first)
}

func TestQuoteFacilities(t *testing.T) {
    bundle := []model.Facility{
        {Name: "Executive Boardroom", Kind: model.KindConferenceRoom, Price: 500},
        {Name: "Summit Room", Kind: model.KindConferenceRoom, Price: 600},
        {Name: "Crystal Hall", Kind: model.KindHall, Price: 2000},
    }
    assert.Equal(t, 3100.0, QuoteFacilities(bundle))
    assert.Equal(t, 300.0, QuoteFacilities([]model.Facility{{Price: 300}}))
    assert.Equal(t, 0.0, QuoteFacilities(nil))
}
