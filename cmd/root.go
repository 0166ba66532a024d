/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mdp/qrterminal/v3"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/http"
	httpCmd "github.com/nuts-foundation/nuts-wallet/http/cmd"
	"github.com/nuts-foundation/nuts-wallet/storage"
	storageCmd "github.com/nuts-foundation/nuts-wallet/storage/cmd"
	"github.com/nuts-foundation/nuts-wallet/wallet"
	walletCmd "github.com/nuts-foundation/nuts-wallet/wallet/cmd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var stdOutWriter io.Writer = os.Stdout

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "wallet",
		Short:        "Wallet which receives Verifiable Credentials from issuers and presents them to verifiers.",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}
}

func createPrintConfigCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			cmd.Println("Current system config")
			cmd.Println(system.Config.PrintConfig())
			return nil
		},
	}
}

func createServerCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the wallet API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			logrus.Info(core.BuildInfo())
			logrus.Info("Starting server with config:")
			logrus.Info(system.Config.PrintConfig())
			return startServer(cmd.Context(), system)
		},
	}
}

func startServer(ctx context.Context, system *core.System) error {
	// check config on all engines
	if err := system.Configure(); err != nil {
		return err
	}
	httpEngine := findEngine[*http.Engine](system)
	if httpEngine == nil {
		return errors.New("HTTP engine is not registered")
	}
	for _, router := range system.Routers {
		router.Routes(httpEngine.Router())
	}
	if err := system.Start(); err != nil {
		return err
	}
	logrus.Info("Wallet started")
	<-ctx.Done()
	logrus.Info("Shutting down...")
	if err := system.Shutdown(); err != nil {
		logrus.WithError(err).Error("Error shutting down system")
		return err
	}
	logrus.Info("Shutdown complete. Goodbye!")
	return nil
}

// withWallet configures the system, runs fn on the wallet engine and shuts the system down again.
func withWallet(cmd *cobra.Command, system *core.System, fn func(ctx context.Context, instance *wallet.Wallet) error) (err error) {
	if err = system.Load(cmd.Flags()); err != nil {
		return err
	}
	if err = system.Configure(); err != nil {
		return err
	}
	defer func() {
		if shutdownErr := system.Shutdown(); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()
	instance := findEngine[*wallet.Wallet](system)
	if instance == nil {
		return errors.New("wallet engine is not registered")
	}
	return fn(cmd.Context(), instance)
}

func createDIDCommand(system *core.System) *cobra.Command {
	var printQR bool
	result := &cobra.Command{
		Use:   "did",
		Short: "Prints the DID of the wallet, creating it on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				did, err := instance.DID(ctx)
				if err != nil {
					return err
				}
				cmd.Println(did)
				if printQR {
					qrterminal.GenerateWithConfig(did, qrterminal.Config{
						BlackChar: qrterminal.WHITE,
						WhiteChar: qrterminal.BLACK,
						Level:     qrterminal.M,
						Writer:    cmd.OutOrStdout(),
						QuietZone: 1,
					})
				}
				return nil
			})
		},
	}
	result.Flags().BoolVar(&printQR, "qr", false, "Also print the DID as QR code")
	return result
}

func createIssueCommand(system *core.System) *cobra.Command {
	var txCode string
	result := &cobra.Command{
		Use:   "issue [offer URL]",
		Short: "Receives a Verifiable Credential using a credential offer URL (as scanned from a QR code)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				issued, err := instance.Issue(ctx, args[0], txCode)
				if err != nil {
					return userFacing(err)
				}
				if issued.TxCodeRequired {
					cmd.Println("The issuer requires a PIN, pass it using --pin.")
					return nil
				}
				cmd.Printf("Received credential from %s\n", issued.Issuer)
				if issued.Credential != nil {
					cmd.Printf("Key: %s\nType: %s\n", issued.Credential.Hash, issued.Credential.Type)
				}
				if issued.Preview != "" {
					cmd.Println(issued.Preview)
				}
				return nil
			})
		},
	}
	result.Flags().StringVar(&txCode, "pin", "", "Transaction code (PIN) the issuer sent through another channel")
	return result
}

func createPresentCommand(system *core.System) *cobra.Command {
	var selected int
	result := &cobra.Command{
		Use:   "present [request URL]",
		Short: "Presents a Verifiable Credential to a verifier, using an authorization request URL (as scanned from a QR code)",
		Long: "Presents a Verifiable Credential to a verifier. Without --select, the credentials that match the request are listed. " +
			"Pass the number of one of them with --select to present it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				requestID, request, err := instance.StartPresentation(ctx, args[0])
				if err != nil {
					return userFacing(err)
				}
				if request.NoMatch() {
					cmd.Println(request.NoMatchMessage())
					return nil
				}
				if selected == 0 {
					cmd.Printf("%s requests a credential of type %s. Matching credentials:\n", request.Verifier(), request.CredentialType)
					for i, candidate := range request.Candidates {
						cmd.Printf("%d. %s (%s, received %s)\n", i+1, candidate.Hash, candidate.Type, candidate.Timestamp.Format("2006-01-02"))
					}
					return nil
				}
				if selected < 0 || selected > len(request.Candidates) {
					return fmt.Errorf("invalid selection: %d (there are %d matching credentials)", selected, len(request.Candidates))
				}
				submission, err := instance.SubmitPresentation(ctx, requestID, request.Candidates[selected-1].Hash)
				if err != nil {
					return userFacing(err)
				}
				cmd.Printf("Presented credential to %s (status %d)\n", request.Verifier(), submission.StatusCode)
				if submission.AuthenticatorRequired {
					cmd.Println("The verifier requires authentication with a security key, which isn't supported on the command line.")
				}
				if submission.RedirectURI != "" {
					cmd.Printf("Continue at: %s\n", submission.RedirectURI)
				}
				return nil
			})
		},
	}
	result.Flags().IntVar(&selected, "select", 0, "Number of the listed credential to present")
	return result
}

func createCredentialCommand(system *core.System) *cobra.Command {
	result := &cobra.Command{
		Use:   "credential",
		Short: "Credential commands",
	}
	result.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lists the recently received credentials, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				credentials, err := instance.Credentials(ctx)
				if err != nil {
					return err
				}
				if len(credentials) == 0 {
					cmd.Println("No credentials")
				}
				for _, credential := range credentials {
					cmd.Printf("%s\t%s\t%s\t%s\n", credential.Hash, credential.Type, credential.Status, credential.Timestamp.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	})
	result.AddCommand(&cobra.Command{
		Use:   "delete [key]",
		Short: "Deletes a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				if err := instance.DeleteCredential(ctx, args[0]); err != nil {
					return err
				}
				cmd.Println("Credential deleted")
				return nil
			})
		},
	})
	result.AddCommand(&cobra.Command{
		Use:   "delete-all",
		Short: "Deletes all credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				if err := instance.DeleteAllCredentials(ctx); err != nil {
					return err
				}
				cmd.Println("All credentials deleted")
				return nil
			})
		},
	})
	return result
}

func createLogsCommand(system *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Prints the wallet activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWallet(cmd, system, func(ctx context.Context, instance *wallet.Wallet) error {
				entries, err := instance.Logs(ctx)
				if err != nil {
					return err
				}
				for _, entry := range entries {
					cmd.Printf("%s [%s] %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level, entry.Message)
				}
				return nil
			})
		},
	}
}

// userFacing converts an error into the message that is shown to the user.
func userFacing(err error) error {
	userErr := wallet.ToUserError(err)
	logrus.WithError(err).Debug("Command failed")
	return fmt.Errorf("%s: %s", userErr.Title, userErr.Message)
}

// CreateCommand creates the command with all subcommands to run the system.
func CreateCommand(system *core.System) *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	addSubCommands(system, command)
	command.PersistentFlags().AddFlagSet(serverConfigFlags())
	return command
}

// CreateSystem creates the system and registers all default engines.
func CreateSystem(shutdownCallback context.CancelFunc) *core.System {
	system := core.NewSystem()
	// Create instances
	statusEngine := core.NewStatusEngine(system)
	metricsEngine := core.NewMetricsEngine()
	storageInstance := storage.New()
	httpServerInstance := http.New(shutdownCallback)
	walletInstance := wallet.New(storageInstance)

	// Register HTTP routes
	system.RegisterRoutes(statusEngine)
	system.RegisterRoutes(metricsEngine)
	system.RegisterRoutes(walletInstance)

	// Register engines, storage first so it's shut down last
	system.RegisterEngine(statusEngine)
	system.RegisterEngine(metricsEngine)
	system.RegisterEngine(storageInstance)
	system.RegisterEngine(httpServerInstance)
	system.RegisterEngine(walletInstance)
	return system
}

// Execute executes the root command.
func Execute(ctx context.Context, system *core.System) error {
	command := CreateCommand(system)
	command.SetOut(stdOutWriter)
	return command.ExecuteContext(ctx)
}

func addSubCommands(system *core.System, root *cobra.Command) {
	root.AddCommand(createServerCommand(system))
	root.AddCommand(createPrintConfigCommand(system))
	root.AddCommand(createDIDCommand(system))
	root.AddCommand(createIssueCommand(system))
	root.AddCommand(createPresentCommand(system))
	root.AddCommand(createCredentialCommand(system))
	root.AddCommand(createLogsCommand(system))
}

func serverConfigFlags() *pflag.FlagSet {
	set := pflag.NewFlagSet("server", pflag.ContinueOnError)
	set.AddFlagSet(core.FlagSet())
	set.AddFlagSet(storageCmd.FlagSet())
	set.AddFlagSet(httpCmd.FlagSet())
	set.AddFlagSet(walletCmd.FlagSet())
	return set
}

func findEngine[T core.Engine](system *core.System) T {
	var result T
	_ = system.VisitEnginesE(func(engine core.Engine) error {
		if e, ok := engine.(T); ok {
			result = e
		}
		return nil
	})
	return result
}
