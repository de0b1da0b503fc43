package kafka

import "slices"

// Canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage Canal 以 flatMessage 格式投递到 Kafka 的行变更，只保留消费端用到的字段
type CanalMessage struct {
	ID       int64  `json:"id"`
	Database string `json:"database"`
	Table    string `json:"table"`
	IsDDL    bool   `json:"isDdl"`
	Type     string `json:"type"`
	TS       int64  `json:"ts"`

	// Data 变更后的行，列值均为字符串
	Data []map[string]any `json:"data"`
	// Old UPDATE 时变更前的列
	Old []map[string]any `json:"old"`
}

func (m *CanalMessage) hasTable(names ...string) bool {
	return slices.Contains(names, m.Table)
}

// IDs 变更行的主键，解析不出的行跳过
func (m *CanalMessage) IDs() []uint64 {
	ids := make([]uint64, 0, len(m.Data))
	for _, row := range m.Data {
		if id := StrToUint64(row["id"]); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
