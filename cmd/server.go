/*
Copyright © 2022 Edmond Cotterell

*/
package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"

	devConfig "github.com/Daskott/rolodex/dev/config"
	"github.com/Daskott/rolodex/server"
	"github.com/Daskott/rolodex/shared"
	"github.com/go-playground/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a rolodex server",
	Long:  `The rolodex server houses the contact book API - accounts, contacts, categories & group email`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(cmd), isDevEnv || isTestEnv)
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig(cmd *cobra.Command) *shared.ServerConfig {
	config := viper.New()

	if isDevEnv || isTestEnv {
		serverConfigFile = devConfigFilePath()
	}

	if serverConfigFile == "" {
		cmd.Printf("%s no --sconfig provided, falling back to the dev config\n", warningLabel)
		serverConfigFile = devConfigFilePath()
	}

	config.SetConfigFile(serverConfigFile)
	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		cobra.CheckErr(formattedError("error reading server config file: %v", err))
	}

	serverConfig := shared.ServerConfig{}
	if err := config.Unmarshal(&serverConfig); err != nil {
		cobra.CheckErr(formattedError("error parsing server config file: %v", err))
	}

	if err := validator.New().Struct(serverConfig); err != nil {
		cobra.CheckErr(formattedError("invalid server config: %v", err))
	}

	return &serverConfig
}

// devConfigFilePath returns the path to the dev server config,
// writing out the embedded default when none exists yet.
func devConfigFilePath() string {
	configDir, err := os.Getwd()
	cobra.CheckErr(err)

	configFilePath := filepath.Join(configDir, "dev", "config", "server.yml")
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		cobra.CheckErr(ioutil.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600))
	}

	return configFilePath
}
