package sources

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfx/harvest/app"
	"github.com/nfx/harvest/pmux"
)

func fixture(t *testing.T, name string) []byte {
	raw, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return raw
}

func strs(proxies []pmux.Proxy) (out []string) {
	for _, p := range proxies {
		out = append(out, p.String())
	}
	return out
}

var defaultColumns = ColumnsExtractor{
	Selector: "table.layui-table",
	IP:       0,
	Port:     1,
	Protocol: 5,
}

func TestColumnsExtractorFixture(t *testing.T) {
	found, err := defaultColumns.Extract(context.Background(), fixture(t, "freeproxyworld.html"))
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"http://1.2.3.4:8080",
		"socks5://5.6.7.8:3128",
	}, strs(found))
}

func TestColumnsExtractorNoTable(t *testing.T) {
	_, err := defaultColumns.Extract(context.Background(), fixture(t, "notable.html"))
	assert.ErrorIs(t, err, ErrNoTable)
	assert.EqualError(t, err, "no table found selector=table.layui-table")
}

func TestColumnsExtractorSkipsShortRows(t *testing.T) {
	body := []byte(`<table class="layui-table">
		<tr><th>h</th></tr>
		<tr><td>a</td></tr>
		<tr><td>1.1.1.1</td><td>80</td></tr>
		<tr><td>1.1.1.2</td><td>81</td><td></td><td></td><td></td></tr>
		<tr><td>1.1.1.3</td><td>82</td><td></td><td></td><td></td><td>https</td></tr>
	</table>`)
	found, err := defaultColumns.Extract(context.Background(), body)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://1.1.1.3:82"}, strs(found))
}

func TestColumnsExtractorHeaderOnly(t *testing.T) {
	body := []byte(`<table class="layui-table"><tr><th>IP</th></tr></table>`)
	found, err := defaultColumns.Extract(context.Background(), body)
	assert.NoError(t, err)
	assert.Len(t, found, 0)
}

func TestColumnsExtractorFirstTableWins(t *testing.T) {
	body := []byte(`
	<table class="layui-table"><tr><th>h</th></tr>
		<tr><td>1.1.1.1</td><td>1</td><td></td><td></td><td></td><td>http</td></tr></table>
	<table class="layui-table"><tr><th>h</th></tr>
		<tr><td>2.2.2.2</td><td>2</td><td></td><td></td><td></td><td>http</td></tr></table>`)
	found, err := defaultColumns.Extract(context.Background(), body)
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://1.1.1.1:1"}, strs(found))
}

func TestColumnsExtractorCustomMapping(t *testing.T) {
	body := []byte(`<table id="list"><tr><th>h</th></tr>
		<tr><td>SOCKS4</td><td>3.3.3.3</td><td>1080</td></tr></table>`)
	found, err := ColumnsExtractor{
		Selector: "#list",
		IP:       1,
		Port:     2,
		Protocol: 0,
	}.Extract(context.Background(), body)
	assert.NoError(t, err)
	assert.Equal(t, []string{"socks4://3.3.3.3:1080"}, strs(found))
}

func TestHeadersExtractorFixture(t *testing.T) {
	found, err := HeadersExtractor{
		IP:       "IP adress",
		Port:     "Port",
		Protocol: "Type",
	}.Extract(context.Background(), fixture(t, "freeproxyworld.html"))
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"http://1.2.3.4:8080",
		"socks5://5.6.7.8:3128",
	}, strs(found))
}

func TestHeadersExtractorReorderedColumns(t *testing.T) {
	body := []byte(`<table><tr><th>Type</th><th>Port</th><th>IP</th></tr>
		<tr><td>http</td><td>8080</td><td>4.4.4.4</td></tr>
		<tr><td>http</td><td>8080</td></tr></table>`)
	found, err := HeadersExtractor{
		IP:       "IP",
		Port:     "Port",
		Protocol: "Type",
	}.Extract(context.Background(), body)
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://4.4.4.4:8080"}, strs(found))
}

func TestHeadersExtractorNoTable(t *testing.T) {
	_, err := HeadersExtractor{
		IP:       "IP",
		Port:     "Port",
		Protocol: "Type",
	}.Extract(context.Background(), fixture(t, "notable.html"))
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestSourceErrorAppliesFields(t *testing.T) {
	err := wrapError(wrapError(ErrNoTable, strEC{"a", "b"}), intEC{"page", 2})
	assert.EqualError(t, err, "no table found a=b page=2")
	assert.True(t, errors.Is(err, ErrNoTable))

	var buf bytesBuffer
	logger := zerolog.New(&buf)
	e := logger.Info()
	err.Apply(e)
	e.Msg("x")
	assert.Equal(t, `{"level":"info","a":"b","page":2,"message":"x"}`+"\n", string(buf))
}

func TestExtractRowsTracesEveryProxy(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytesBuffer
	ctx := app.Log.To(context.Background(), zerolog.New(&buf).Level(zerolog.TraceLevel))

	found, err := defaultColumns.Extract(ctx, fixture(t, "freeproxyworld.html"))
	assert.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Contains(t, string(buf), `"proxy":"http://1.2.3.4:8080","row":1,"message":"extracted proxy"`)
	assert.Contains(t, string(buf), `"proxy":"socks5://5.6.7.8:3128"`)
}

type bytesBuffer []byte

func (b *bytesBuffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
