package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/sqlbridge/sqlbridge/pkg/config"
	"github.com/sqlbridge/sqlbridge/pkg/settings"
)

func main() {
	inspect := flag.Bool("inspect", false, "print the loaded registries and exit")
	category := flag.String("category", "select", "template category: insert, select, update, delete")
	template := flag.String("template", "", "print the template registered under this name")
	flag.Parse()

	if path, ok := settings.LoadEnvFile(); ok {
		log.Printf("📁 Loaded environment from %s", path)
	}

	reg, err := config.Instance()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("✅ Configuration loaded for provider %s", reg.ProviderName())

	if *template != "" {
		text, err := reg.Template(config.Category(*category), *template)
		if err != nil {
			log.Fatalf("Template lookup failed: %v", err)
		}
		fmt.Println(text)
		return
	}

	if *inspect {
		printRegistry(reg)
	}
}

func printRegistry(reg *config.Registry) {
	for _, cat := range []config.Category{
		config.CategoryInsert, config.CategorySelect,
		config.CategoryUpdate, config.CategoryDelete,
	} {
		names := reg.TemplateNames(cat)
		sort.Strings(names)
		fmt.Printf("%s templates (%d):\n", cat, len(names))
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
	}

	keys := reg.TableKeys()
	sort.Strings(keys)
	fmt.Printf("mapped tables (%d):\n", len(keys))
	for _, k := range keys {
		cols, _ := reg.Mapping(k)
		fmt.Printf("  %s (%d columns)\n", k, len(cols))
	}

	p := reg.Provider()
	fmt.Printf("field enclosers: %q %q\n", p.StartFieldEncloser, p.EndFieldEncloser)
	if p.LastInsertIDStatement != "" {
		fmt.Printf("last-insert-id: %s\n", p.LastInsertIDStatement)
	}
}
