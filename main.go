package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity/driver"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/envserver"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/task"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
)

var (
	// 运行模式：rollout-本地批量运行episode；serve-启动远程环境服务
	mode = flag.String("mode", "rollout", "run mode (rollout or serve)")
	// rollout模式使用的内置策略
	driverName = flag.String("driver", driver.FollowerName, "built-in driver for rollout mode (random or follower)")
	// serve模式监听的地址，为空时使用配置中的server.listen
	listenAddr = flag.String("listen", "", "RPC listening address, overrides server.listen")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path (empty means built-in defaults)")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "racesim")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	c := config.Default()
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	}
	if file != nil {
		if c, err = config.Parse(file); err != nil {
			log.Panicf("config file load err: %v", err)
		}
	}
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("config err: %v", err)
	}
	log.Infof("%+v", c)

	switch *mode {
	case "serve":
		addr := *listenAddr
		if addr == "" {
			addr = c.Server.Listen
		}
		if err := envserver.RunServer(addr, rc); err != nil {
			log.Panicf("failed to serve: %v", err)
		}
	case "rollout":
		if _, err := driver.New(*driverName, rc, 0); err != nil {
			log.Panicf("%v", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		report, err := task.RunRollouts(ctx, rc, func(rc *config.RuntimeConfig, seed uint64) (entity.IDriver, error) {
			return driver.New(*driverName, rc, seed)
		})
		if err != nil {
			log.Panicf("rollout failed: %v", err)
		}
		log.Infof("rollout complete: %v", report)
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Panicf("marshal report: %v", err)
		}
		os.Stdout.Write(append(out, '\n'))
	default:
		log.Panicf("mode must be rollout or serve, got %q", *mode)
	}
}
