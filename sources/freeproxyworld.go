package sources

import "time"

func init() {
	columns := ColumnsExtractor{
		Selector: "table.layui-table",
		IP:       0,
		Port:     1,
		Protocol: 5,
	}
	Sources = append(Sources, Source{
		ID:       1,
		Homepage: "https://www.freeproxy.world/",
		// elite proxies, fast ones only
		URL:     "https://www.freeproxy.world/?type=&anonymity=4&country=&speed=1089&port=&page=",
		First:   1,
		Last:    3,
		Delay:   3 * time.Second,
		Columns: columns,
		Headers: HeadersExtractor{
			IP:       "IP adress",
			Port:     "Port",
			Protocol: "Type",
		},
		Extractor: columns,
	})
}
