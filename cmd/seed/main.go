package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/seed"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// preview 在不写数据库的情况下加载 YAML 文件，并为每个地区生成一次套餐
func preview(store *catalog.MemoryStore, maxDays int, maxBudget float64) {
	cat := catalog.New(store)
	if _, err := cat.Load(); err != nil {
		slog.Error("无法加载目录", slog.String("error", err.Error()))
		return
	}

	limits := optimizer.Limits{}
	if maxDays >= 0 {
		limits = limits.WithMaxDays(int32(min(maxDays, math.MaxInt32)))
	}
	if maxBudget >= 0 {
		limits = limits.WithMaxBudget(maxBudget)
	}

	opt := optimizer.New(cat)
	for _, region := range store.Regions {
		pkg, err := opt.GeneratePackage(context.Background(), region.ID, limits)
		if err != nil {
			slog.Error("无法生成套餐", slog.String("region", region.ID), slog.String("error", err.Error()))
			continue
		}

		names := make([]string, 0, len(pkg.Tours))
		for _, t := range pkg.Tours {
			names = append(names, t.Name)
		}
		slog.Info("套餐预览",
			slog.String("region", region.ID),
			slog.Any("tours", names),
			slog.Int64("totalDays", pkg.TotalDays),
			slog.Float64("totalCost", pkg.TotalCost),
			slog.Int64("totalValue", pkg.TotalValue),
			slog.Int64("nodes", pkg.Stats.Nodes),
		)
	}
}

func main() {
	var op int
	var n int
	var file string
	var maxDays int
	var maxBudget float64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机地区, 2: 插入随机景点, 3: 插入随机线路, 4: 导入 YAML 文件, 5: 预览 YAML 文件生成的套餐)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "./internal/seed/data/catalog.yaml", "要导入的 YAML 文件")
	flag.IntVar(&maxDays, "max-days", -1, "预览时的天数限制，负数表示不限制")
	flag.Float64Var(&maxBudget, "max-budget", -1, "预览时的预算限制，负数表示不限制")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 预览不需要数据库
	if op == 5 {
		f, err := seed.ParseFile(file)
		if err != nil {
			slog.Error("无法读取 YAML 文件", slog.String("error", err.Error()))
			return
		}
		store, err := f.Plan()
		if err != nil {
			slog.Error("YAML 文件内容有误", slog.String("error", err.Error()))
			return
		}
		preview(store, maxDays, maxBudget)
		return
	}

	// 读取配置文件
	if err := godotenv.Load(); err != nil {
		logger.Info("没有找到 .env 文件，使用环境变量")
	}

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
			slog.Error("请输入合法的地区数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				region := utils.GenerateRandomRegion()
				if err := repo.CreateRegion(region); err != nil {
					slog.Error("无法插入地区", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入地区成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的景点数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				a := utils.GenerateRandomAttraction()
				if err := repo.CreateAttraction(a); err != nil {
					slog.Error("无法插入景点", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入景点成功", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的线路数量")
		} else {
			// 先获取所有地区和景点
			regions, err := repo.GetAllRegions()
			if err != nil {
				slog.Error("无法获取所有地区", slog.String("error", err.Error()))
				return
			}
			attractions, err := repo.GetAllAttractions()
			if err != nil {
				slog.Error("无法获取所有景点", slog.String("error", err.Error()))
				return
			}
			if len(regions) == 0 || len(attractions) == 0 {
				slog.Error("请先插入地区和景点")
				return
			}

			attractionIDs := make([]int64, 0, len(attractions))
			for _, a := range attractions {
				attractionIDs = append(attractionIDs, a.ID)
			}

			cnt := n
			for i := 0; i < n; i++ {
				// 随机选一个地区
				region := regions[rand.Intn(len(regions))]

				tour := utils.GenerateRandomTour(region.ID)
				if err := repo.CreateTour(tour, utils.GenerateRandomSubset(attractionIDs, 4)); err != nil {
					slog.Error("无法插入线路", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入线路成功", slog.Int("count", n-cnt))
		}
	case 4:
		f, err := seed.ParseFile(file)
		if err != nil {
			slog.Error("无法读取 YAML 文件", slog.String("error", err.Error()))
			return
		}
		store, err := f.Plan()
		if err != nil {
			slog.Error("YAML 文件内容有误", slog.String("error", err.Error()))
			return
		}
		if _, _, _, err := seed.Import(repo, store); err != nil {
			slog.Error("导入数据失败", slog.String("error", err.Error()))
			return
		}
	default:
		slog.Error("指定的操作非法")
	}
}
