package domain

import "time"

const (
	MinTaskPenalty = 1
	MaxTaskPenalty = 10
)

type Task struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userID"`
	ParentID     *int64    `json:"parentID"` // 为 nil 表示根任务
	TaskName     string    `json:"taskName"`
	TaskDetail   string    `json:"taskDetail"`
	ExpectedTime int64     `json:"expectedTime"` // 预计所需时间，单位为分钟
	Penalty      int64     `json:"penalty"`      // 逾期惩罚权重（重要性），1~10
	EndTime      time.Time `json:"endTime"`      // 截止时间
	IsFinished   bool      `json:"isFinished"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
