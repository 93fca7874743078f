package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"instaclone/internal/client"
	"instaclone/internal/config"
	"instaclone/internal/domain"
)

func main() {
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}

	api, err := client.New(cfg.APIURL, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("===== instaclone (%s) =====\n", cfg.APIURL)
	printHelp()
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err = run(ctx, api, reader, fields[0], fields[1:])
		cancel()
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

var errQuit = errors.New("quit")

func run(ctx context.Context, api *client.Client, reader *bufio.Reader, cmd string, args []string) error {
	switch cmd {
	case "register":
		if len(args) != 3 {
			return errors.New("uso: register <username> <email> <password>")
		}
		if err := api.Register(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("Cuenta creada.")
	case "login":
		if len(args) != 2 {
			return errors.New("uso: login <email> <password>")
		}
		profile, err := api.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Hola %s.\n", profile.Username)
	case "whoami":
		me, ok := api.Current()
		if !ok {
			return client.ErrNotLoggedIn
		}
		printUser(me)
	case "profile":
		id := ""
		if len(args) > 0 {
			id = args[0]
		} else if me, ok := api.Current(); ok {
			id = me.ID
		}
		if id == "" {
			return errors.New("uso: profile <id>")
		}
		profile, err := api.Profile(ctx, id)
		if err != nil {
			return err
		}
		printUser(profile.User)
		fmt.Printf("posts: %d  followers: %d  following: %d\n", profile.PostCount, profile.FollowerCount, profile.FollowingCount)
	case "suggested":
		users, err := api.Suggested(ctx)
		if err != nil {
			return err
		}
		for i, u := range users {
			fmt.Printf("[%d] %s (ID: %s)\n", i+1, u.Username, u.ID)
		}
	case "follow":
		if len(args) != 1 {
			return errors.New("uso: follow <id>")
		}
		action, err := api.ToggleFollow(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(action.Message())
	case "bio":
		fmt.Print("Nueva bio: ")
		bio, _ := reader.ReadString('\n')
		profile, err := api.EditProfile(ctx, client.EditProfileInput{Bio: strings.TrimSpace(bio)})
		if err != nil {
			return err
		}
		printUser(profile.User)
	case "logout":
		if err := api.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Sesion cerrada.")
	case "help":
		printHelp()
	case "quit", "exit":
		return errQuit
	default:
		fmt.Println("Comando desconocido. Escribe 'help'.")
	}
	return nil
}

func printUser(u domain.User) {
	fmt.Printf("%s <%s> (ID: %s)\n", u.Username, u.Email, u.ID)
	if u.Bio != "" {
		fmt.Printf("bio: %s\n", u.Bio)
	}
	fmt.Printf("following: %v\nfollowers: %v\n", u.Following, u.Followers)
}

func printHelp() {
	fmt.Println("Comandos: register, login, whoami, profile [id], suggested, follow <id>, bio, logout, quit")
}
