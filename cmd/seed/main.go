package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/seed"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var userID int64
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 为用户插入随机任务, 3: 从 CSV 导入任务)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&userID, "user-id", 0, "任务所属的用户 ID")
	flag.StringVar(&file, "file", "./tasks.csv", "要导入的 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if !checkUser(repo, userID) {
			return
		}
		if n <= 0 {
			slog.Error("请输入合法的任务数量")
			return
		}

		now := time.Now()
		cnt := 0
		for i := 0; i < n; i++ {
			task := utils.GenerateRandomTask(userID, now)
			if err := repo.CreateTask(task); err != nil {
				slog.Error("无法插入任务", slog.String("error", err.Error()))
				continue
			}
			cnt++

			// 大约三分之一的任务拆分为子任务
			if rand.Intn(3) != 0 {
				continue
			}
			for j := rand.Intn(3) + 1; j > 0; j-- {
				if err := repo.CreateTask(utils.GenerateRandomSubtask(task, now)); err != nil {
					slog.Error("无法插入子任务", slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}

		slog.Info("插入任务成功", slog.Int("count", cnt))
	case 3:
		if !checkUser(repo, userID) {
			return
		}
		seed.SeedTasksFromCSV(repo, file, userID)
	default:
		slog.Error("指定的操作非法")
	}
}

func checkUser(repo *repository.Repository, userID int64) bool {
	if userID <= 0 {
		slog.Error("请输入合法的用户 ID")
		return false
	}

	if _, err := repo.GetUserByID(userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			slog.Error("指定的用户不存在", slog.Int64("user_id", userID))
		default:
			slog.Error("无法获取用户", slog.String("error", err.Error()))
		}
		return false
	}

	return true
}
