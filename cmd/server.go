/*
Copyright © 2021 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"log"
	"strings"

	devConfig "github.com/Daskott/contactspro/dev/config"
	"github.com/Daskott/contactspro/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a contactspro server",
	Long: `The contactspro server exposes the contacts & groups REST API, bulk CSV
uploads and periodic maintenance jobs (group repair, sqlite backups)`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := serverConfig()
		cobra.CheckErr(err)

		server.Start(config, isDevEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	rootCmd.PersistentFlags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

// serverConfig reads the server config file, or the bundled dev config in dev
// mode. Env vars override file values e.g. CONTACTSPRO_LISTENER_PORT.
func serverConfig() (*viper.Viper, error) {
	config := viper.New()
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	config.BindEnv("google.applicationCredentials", "GOOGLE_APPLICATION_CREDENTIALS")

	if isDevEnv && serverConfigFile == "" {
		config.SetConfigType("yaml")
		if err := config.ReadConfig(strings.NewReader(devConfig.SERVER_YML)); err != nil {
			log.Panic(fmt.Sprintf("error reading dev server config: %v", err))
		}
		return config, nil
	}

	if serverConfigFile == "" {
		return nil, formattedError("'--sconfig' must point to a server config file, or run with '--dev'")
	}

	config.SetConfigFile(serverConfigFile)
	if err := config.ReadInConfig(); err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	return config, nil
}
