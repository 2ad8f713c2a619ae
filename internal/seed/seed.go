package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/utils"
)

const endTimeLayout = "2006-01-02 15:04"

// 列的顺序不做要求
var requiredHeaders = []string{"任务名称", "任务详情", "预计时间", "惩罚值", "截止时间"}

// ParseTasksCSV 解析任务表格，预计时间以小时为单位，截止时间按 loc 解析
func ParseTasksCSV(r io.Reader, userID int64, loc *time.Location) ([]*domain.Task, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		columns[strings.TrimSpace(header)] = i
	}
	for _, header := range requiredHeaders {
		if _, ok := columns[header]; !ok {
			return nil, fmt.Errorf("缺少表头 %s", header)
		}
	}

	tasks := []*domain.Task{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行读取失败: %w", line, err)
		}

		hours, err := strconv.ParseFloat(strings.TrimSpace(record[columns["预计时间"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的预计时间格式错误", line)
		}

		penalty, err := strconv.ParseInt(strings.TrimSpace(record[columns["惩罚值"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的惩罚值格式错误", line)
		}

		endTime, err := time.ParseInLocation(endTimeLayout, strings.TrimSpace(record[columns["截止时间"]]), loc)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的截止时间格式错误", line)
		}

		task := &domain.Task{
			UserID:       userID,
			TaskName:     strings.TrimSpace(record[columns["任务名称"]]),
			TaskDetail:   strings.TrimSpace(record[columns["任务详情"]]),
			ExpectedTime: int64(math.Round(hours * 60)),
			Penalty:      penalty,
			EndTime:      endTime,
		}

		if task.TaskName == "" {
			return nil, fmt.Errorf("第 %d 行的任务名称为空", line)
		}
		if err := utils.ValidateTask(task); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

func SeedTasksFromCSV(r *repository.Repository, path string, userID int64) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	tasks, err := ParseTasksCSV(file, userID, time.Local)
	if err != nil {
		slog.Error("解析任务表格失败", "error", err)
		return
	}

	if err := r.CreateTasks(tasks); err != nil {
		slog.Error("插入任务失败", "error", err)
		return
	}

	slog.Info("导入任务成功", "userID", userID, "count", len(tasks))
}
