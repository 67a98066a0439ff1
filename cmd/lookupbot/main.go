package main

import (
	"fmt"
	"log"
	_ "time/tzdata"

	corecmd "github.com/m3rciful/lookupbot/core/cmd"
	"github.com/m3rciful/lookupbot/internal/bot"
	"github.com/m3rciful/lookupbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			c, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return bot.Bootstrap(c)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
