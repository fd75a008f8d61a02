// Package cli wires the wurdle command line: the cobra root command, its
// flags, and the viper configuration file that can set them. Credentials
// come from the environment or a .env file.
package cli
