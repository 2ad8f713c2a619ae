package utils

import (
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var taskVerbs = []string{"完成", "整理", "复习", "提交", "准备", "修改", "阅读", "撰写"}
var taskObjects = []string{"实验报告", "课程作业", "项目文档", "周报", "演示文稿", "论文初稿", "代码评审", "考试笔记"}

// GenerateRandomTask 生成一个根任务，截止时间在 now 之后的 14 天以内
func GenerateRandomTask(userID int64, now time.Time) *domain.Task {
	name := taskVerbs[rand.Intn(len(taskVerbs))] + taskObjects[rand.Intn(len(taskObjects))]

	return &domain.Task{
		UserID:       userID,
		TaskName:     name,
		TaskDetail:   name + "，编号 " + GenerateRandomID(3, 3),
		ExpectedTime: int64(rand.Intn(16)+1) * 30, // 30 分钟到 8 小时
		Penalty:      int64(rand.Intn(domain.MaxTaskPenalty-domain.MinTaskPenalty+1) + domain.MinTaskPenalty),
		EndTime:      now.Add(time.Duration(rand.Intn(14*24)+1) * time.Hour).Truncate(time.Minute),
	}
}

// GenerateRandomSubtask 子任务继承父任务的惩罚值，截止时间不晚于父任务
func GenerateRandomSubtask(parent *domain.Task, now time.Time) *domain.Task {
	task := GenerateRandomTask(parent.UserID, now)
	task.ParentID = &parent.ID
	task.TaskName = parent.TaskName + "-" + GenerateRandomID(0, 2)
	task.Penalty = parent.Penalty
	if task.EndTime.After(parent.EndTime) {
		task.EndTime = parent.EndTime
	}

	return task
}
