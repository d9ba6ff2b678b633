// seed_orgs.go — standalone script to seed organization profiles from a JSON
// file via the allocator admin API.
//
// Usage:
//
//	go run scripts/seed_orgs.go -file orgs.json -api http://localhost:8700 -token $ALLOCATOR_ADMIN_TOKEN
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
)

type organization struct {
	OrgID                  string   `json:"org_id"`
	OrgName                string   `json:"org_name"`
	Region                 string   `json:"region"`
	Specialties            []string `json:"specialties"`
	CurrentLoad            int      `json:"current_load"`
	MaxCapacity            *int     `json:"max_capacity,omitempty"`
	HistoricalRecoveryRate float64  `json:"historical_recovery_rate"`
	HistoricalSuccessRate  float64  `json:"historical_success_rate"`
}

func main() {
	filePath := flag.String("file", "orgs.json", "path to organizations JSON file")
	apiURL := flag.String("api", "http://localhost:8700", "allocator API base URL")
	token := flag.String("token", "", "admin bearer token")
	dryRun := flag.Bool("dry-run", false, "print organizations without posting")
	flag.Parse()

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read %s: %v", *filePath, err)
	}

	var orgs []organization
	if err := json.Unmarshal(data, &orgs); err != nil {
		log.Fatalf("parse %s: %v", *filePath, err)
	}

	if *dryRun {
		for _, org := range orgs {
			fmt.Printf("%s  %s (%s)\n", org.OrgID, org.OrgName, org.Region)
		}
		fmt.Printf("%d organizations (dry run)\n", len(orgs))
		return
	}

	seeded := 0
	for _, org := range orgs {
		body, _ := json.Marshal(org)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/organizations", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("post %s: %v", org.OrgID, err)
		}
		if resp.StatusCode != http.StatusOK {
			log.Fatalf("post %s: status %d", org.OrgID, resp.StatusCode)
		}
		resp.Body.Close()
		seeded++
	}
	fmt.Printf("seeded %d organizations\n", seeded)
}
