package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-kit/log/level"
	cfg "github.com/mailio/go-web3-kit/config"
	w3srv "github.com/mailio/go-web3-kit/gingonic"
	"github.com/redis/go-redis/v9"
	"github.com/t-hirai03/webmaka/apiroutes"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/types"
	"golang.org/x/sys/unix"
)

func initRedisClient(conf global.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Host + ":" + strconv.Itoa(conf.Redis.Port),
		Username: conf.Redis.Username,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	rCtx, rCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer rCancel()
	if err := client.Ping(rCtx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to redis: %v", err))
	}
	return client
}

// @title webmaka contact API
// @version 1.0
// @description Contact form submission and the contact pages of the webmaka site
func main() {
	var (
		configFile string
	)
	// configuration file optional path. Default:  current dir with  filename conf.yaml
	flag.StringVar(&configFile, "c", "conf.yaml", "Configuration file path.")
	flag.StringVar(&configFile, "config", "conf.yaml", "Configuration file path.")
	flag.Usage = usage
	flag.Parse()

	// loading configuration file
	err := cfg.NewYamlConfig(configFile, &global.Conf)
	if err != nil {
		global.Logger.Log(err, "conf.yaml failed to load")
		panic("Failed to load conf.yaml")
	}
	global.Conf.ApplyDefaults()
	if err := global.Conf.Validate(); err != nil {
		global.Logger.Log(err, "invalid configuration")
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}
	global.ConfigureLogger(global.Conf.Mode)

	var redisClient *redis.Client
	if global.Conf.Site.SessionStore == "redis" {
		redisClient = initRedisClient(global.Conf)
		defer redisClient.Close()
	}

	env := types.NewEnvironment(redisClient)
	defer env.Cron.Stop()

	// server wait to shutdown monitoring channels
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, unix.SIGTERM)

	// register email senders from config
	RegisterEmailSenders(&global.Conf)

	contactService := ConfigContactService(&global.Conf)
	contactPages := ConfigContactPages(&global.Conf, contactService, env)

	// init routing (for RESTful API endpoints and pages)
	router := w3srv.NewAPIRouter(&global.Conf.YamlConfig)
	router = apiroutes.ConfigRoutes(router, contactService, contactPages)

	// start server
	srv := w3srv.Start(&global.Conf.YamlConfig, router)
	// wait for server shutdown
	go w3srv.Shutdown(srv, quit, done)

	level.Info(global.Logger).Log("msg", "Server is ready to handle requests", "port", global.Conf.Port, "provider", global.Conf.Email.Provider, "sessionStore", global.Conf.Site.SessionStore)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("%v\n", err))
	}

	<-done
}

// usage will print out the flag options for the server.
func usage() {
	usageStr := `Usage: webmaka [options]
	Server Options:
	-c, --config <file>              Configuration file path
`
	fmt.Printf("%s\n", usageStr)
	os.Exit(0)
}
