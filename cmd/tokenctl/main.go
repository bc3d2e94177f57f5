package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/restoflow/websrm-adapter/internal/config"
	"github.com/restoflow/websrm-adapter/pkg/utils"
)

// tokenctl mints operator tokens out of band. The API has no login endpoint,
// so the initial access/refresh pair comes from this command; afterwards the
// pair is rotated through POST /api/v1/auth/refresh.
func main() {
	operator := flag.String("operator", "", "operator identifier to embed in the token")
	roles := flag.String("roles", "operator", "comma-separated roles (operator, admin)")
	flag.Parse()

	if *operator == "" {
		log.Fatal("tokenctl: -operator is required")
	}

	cfg := config.Load()
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	roleList := strings.Split(*roles, ",")
	for i := range roleList {
		roleList[i] = strings.TrimSpace(roleList[i])
	}

	accessToken, err := jwtManager.GenerateAccessToken(*operator, roleList)
	if err != nil {
		log.Fatalf("tokenctl: generate access token: %v", err)
	}
	refreshToken, err := jwtManager.GenerateRefreshToken(*operator, roleList)
	if err != nil {
		log.Fatalf("tokenctl: generate refresh token: %v", err)
	}

	fmt.Printf("access_token:  %s\n", accessToken)
	fmt.Printf("refresh_token: %s\n", refreshToken)
}
