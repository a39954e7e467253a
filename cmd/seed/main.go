package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/config"
	"github.com/jtomassoni/scheduler-sub001/internal/repository"
	"github.com/jtomassoni/scheduler-sub001/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var venueID int64
	var year int
	var month int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机门店, 3: 为某门店插入随机班次, 4: 为所有员工插入随机空闲时间表)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&venueID, "venue-id", 0, "插入随机班次的门店 ID")
	flag.IntVar(&year, "year", time.Now().Year(), "班次或空闲时间表所在的年份")
	flag.IntVar(&month, "month", int(time.Now().Month()), "班次或空闲时间表所在的月份")
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
			slog.Error("请输入合法的员工数量")
			return
		}

		// 随机员工的偏好门店从现有门店里抽取
		venues, err := repo.GetAllVenues()
		if err != nil {
			slog.Error("无法获取门店列表", slog.String("error", err.Error()))
			return
		}
		if len(venues) == 0 {
			slog.Error("请先插入门店再插入员工")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			member, err := utils.GenerateRandomStaffMember(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机员工", slog.String("error", err.Error()))
				continue
			}

			// 随机抽取 1~3 个偏好门店，偶尔让门店给出显式优先级
			perm := rand.Perm(len(venues))
			preferred := 1 + rand.Intn(3)
			if preferred > len(venues) {
				preferred = len(venues)
			}
			for _, idx := range perm[:preferred] {
				member.PreferredVenues = append(member.PreferredVenues, venues[idx].ID)
				if rand.Intn(3) == 0 {
					member.VenueRankings[venues[idx].ID] = int32(rand.Intn(5) + 1)
				}
			}

			if err := repo.CreateStaffMember(member); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入员工成功", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的门店数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			venue := utils.GenerateRandomVenue()
			if err := repo.CreateVenue(venue); err != nil {
				slog.Error("无法插入门店", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入门店成功", slog.Int("count", n-cnt))
	case 3:
		if venueID <= 0 {
			slog.Error("请输入合法的门店 ID")
			return
		}
		if _, err := repo.GetVenueByID(venueID); err != nil {
			slog.Error("无法获取门店", slog.String("error", err.Error()))
			return
		}

		daysInMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()

		cnt := 0
		for day := 1; day <= daysInMonth; day++ {
			date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			shift := utils.GenerateRandomShift(venueID, date)
			if err := repo.CreateShift(shift); err != nil {
				slog.Error("无法插入班次", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入班次成功", slog.Int("count", cnt))
	case 4:
		members, err := repo.GetAllStaffMembers()
		if err != nil {
			slog.Error("无法获取员工列表", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, member := range members {
			av := utils.GenerateRandomAvailability(member.ID, int32(year), int32(month))
			if err := repo.UpsertAvailability(av); err != nil {
				slog.Error("无法插入空闲时间表", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入空闲时间表成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
