package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// 排序请求中可选的遗传算法参数，为 nil 时使用对应方法的默认值
type SequencingParameters struct {
	PopulationSize *int     `json:"populationSize" validate:"omitempty,min=2"`
	MaxGenerations *int     `json:"maxGenerations" validate:"omitempty,min=1"`
	CrossoverRate  *float64 `json:"crossoverRate" validate:"omitempty,min=0,max=1"`
	MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
}

type SequencingRequest struct {
	UserID     int64                `json:"userID"`
	Method     int                  `json:"method"`
	Parameters SequencingParameters `json:"parameters"`
	Seed       int64                `json:"seed"` // 为 0 时使用随机种子
}

type SequencingResult struct {
	ID                     int64     `json:"id"`
	UserID                 int64     `json:"userID"`
	Method                 string    `json:"method"`
	TaskIDs                []int64   `json:"taskIDs"`
	TotalWeightedTardiness int64     `json:"totalWeightedTardiness"`
	CreatedAt              time.Time `json:"createdAt"`
	Version                int32     `json:"-"`
}

// SequenceEnvelope 是无状态排序接口以及命令行工具使用的输入格式。
// 任务ID保留原始的 JSON 文本，输出时原样写回，超过 2^53 的整数也不会失真。
type SequenceEnvelope struct {
	TaskIDs      []json.RawMessage `json:"taskIDs"`
	ExpectedTime IntList           `json:"expectedTime"`
	EndTimes     IntList           `json:"endTimes"`
	Penalty      IntList           `json:"penalty"`
	Alg          IntValue          `json:"alg"`
	SequencingParameters
	Seed int64 `json:"seed"`
}

// IntValue 接受 JSON 数字或数字字符串，小数向零取整
type IntValue int64

func (v *IntValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}

	var raw any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	var s string
	switch x := raw.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return fmt.Errorf("无法将 %s 转换为整数", string(data))
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = IntValue(i)
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("无法将 %q 转换为整数", s)
	}
	*v = IntValue(math.Trunc(f))
	return nil
}

// IntList 是一个整数数组，每个元素都按 IntValue 的规则解析
type IntList []int64

func (l *IntList) UnmarshalJSON(data []byte) error {
	var values []IntValue
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	out := make(IntList, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	*l = out
	return nil
}
