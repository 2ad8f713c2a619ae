package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTasksCSV(t *testing.T) {
	data := `惩罚值,任务名称,任务详情,预计时间,截止时间
3,写周报, 本周进展 ,1.5,2024-05-02 18:00
10,准备答辩,演示文稿,4,2024-05-03 09:30
`

	tasks, err := ParseTasksCSV(strings.NewReader(data), 9, time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "写周报", tasks[0].TaskName)
	assert.Equal(t, "本周进展", tasks[0].TaskDetail)
	assert.Equal(t, int64(90), tasks[0].ExpectedTime)
	assert.Equal(t, int64(3), tasks[0].Penalty)
	assert.Equal(t, time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC), tasks[0].EndTime)
	assert.Equal(t, int64(9), tasks[0].UserID)

	assert.Equal(t, int64(240), tasks[1].ExpectedTime)
	assert.Equal(t, int64(10), tasks[1].Penalty)
}

func TestParseTasksCSVErrors(t *testing.T) {
	header := "任务名称,任务详情,预计时间,惩罚值,截止时间\n"

	tests := []struct {
		name string
		data string
	}{
		{"missing header", "任务名称,预计时间,惩罚值,截止时间\n"},
		{"bad hours", header + "a,b,x,3,2024-05-02 18:00\n"},
		{"bad penalty", header + "a,b,1,high,2024-05-02 18:00\n"},
		{"penalty out of range", header + "a,b,1,11,2024-05-02 18:00\n"},
		{"bad end time", header + "a,b,1,3,2024/05/02\n"},
		{"empty name", header + ",b,1,3,2024-05-02 18:00\n"},
		{"zero hours", header + "a,b,0,3,2024-05-02 18:00\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTasksCSV(strings.NewReader(tt.data), 1, time.UTC)
			assert.Error(t, err)
		})
	}
}
