package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	o := Options{Host: "ch"}.withDefaults()
	assert.Equal(t, 9000, o.Port)
	assert.Equal(t, "default", o.Database)
	assert.Equal(t, "default", o.User)
	assert.Equal(t, 5*time.Second, o.DialTimeout)

	co := o.chOptions()
	assert.Equal(t, []string{"ch:9000"}, co.Addr)
	assert.Equal(t, ch.Native, co.Protocol)
	assert.Empty(t, co.Settings)
}

func TestOptions_AsyncInsertAndHTTP(t *testing.T) {
	co := Options{Host: "ch", Port: 8123, HTTP: true, AsyncInsert: true, MaxExecTime: 30 * time.Second}.withDefaults().chOptions()
	assert.Equal(t, ch.HTTP, co.Protocol)
	assert.Equal(t, 1, co.Settings["async_insert"])
	assert.Equal(t, 1, co.Settings["wait_for_async_insert"])
	assert.Equal(t, 30, co.Settings["max_execution_time"])
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	require.Error(t, err)
}
