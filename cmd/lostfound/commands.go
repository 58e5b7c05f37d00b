package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/ai"
	"github.com/shinyyama/reconnect/internal/client"
	"github.com/shinyyama/reconnect/internal/match"
	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/verify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	submitForm   client.ReportForm
	submitLat    float64
	submitLon    float64
	submitLocate bool

	searchProduct  string
	searchCategory string
	searchLocation string

	verifyProvider string
	verifySeed     int64

	matchEmbedder string
	matchCategory string

	claimReport    string
	claimLostImage string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Report a found item",
	Long: `Report a found item with a photo.

Categories: ` + fmt.Sprint(model.Categories) + `

--locate fills in coordinates, city and location description from the device's
approximate position; explicit flags still win.`,
	RunE: runSubmit,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search reported items by keyword, category and location",
	RunE:  runSearch,
}

var contactCmd = &cobra.Command{
	Use:   "contact <item_id>",
	Short: "Show the finder's contact number for an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContact,
}

var verifyCmd = &cobra.Command{
	Use:   "verify-document <report-image>",
	Short: "Check a police report (FIR) image",
	Long: `Check a police report (FIR) image.

The default "simulated" provider is NON-PRODUCTION: it does not read the document and
returns fixed synthetic fields 80% of the time. Use --provider gemini for real extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var matchCmd = &cobra.Command{
	Use:   "match <lost-image> <found-image-path>",
	Short: "Compare your photo with a found item's photo",
	Long: `Compare your photo with a found item's photo.

<found-image-path> is the image_path of a search result or a local file.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

var claimCmd = &cobra.Command{
	Use:   "claim <item_id> <found-image-path>",
	Short: "Verify a report, match photos and reveal the contact when both pass",
	Args:  cobra.ExactArgs(2),
	RunE:  runClaim,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitForm.Description, "description", "", "Item description (required)")
	f.StringVar(&submitForm.ContactNo, "contact", "", "Your contact number (required)")
	f.StringVar(&submitForm.Category, "category", "", "Item category (required)")
	f.StringVar(&submitForm.City, "city", "", "City where it was found (required unless --locate)")
	f.StringVar(&submitForm.LocationDesc, "location-desc", "", "Where exactly it was found")
	f.StringVar(&submitForm.ImagePath, "image", "", "Photo of the item (required)")
	f.Float64Var(&submitLat, "lat", 0, "Latitude")
	f.Float64Var(&submitLon, "lon", 0, "Longitude")
	f.BoolVar(&submitLocate, "locate", false, "Autofill location from the device position")

	searchCmd.Flags().StringVar(&searchProduct, "product", "", "Keyword, e.g. wallet")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Exact category")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "City or place")

	for _, c := range []*cobra.Command{verifyCmd, claimCmd} {
		c.Flags().StringVar(&verifyProvider, "provider", "simulated", "Verification provider: simulated or gemini")
		c.Flags().Int64Var(&verifySeed, "seed", 0, "Seed for the simulated provider (0 = random)")
	}
	for _, c := range []*cobra.Command{matchCmd, claimCmd} {
		c.Flags().StringVar(&matchEmbedder, "embedder", "color", "Image embedder: color or caption")
		c.Flags().StringVar(&matchCategory, "category", "", "Item category, used as a hint by the caption embedder")
	}
	claimCmd.Flags().StringVar(&claimReport, "report", "", "Police report image (required)")
	claimCmd.Flags().StringVar(&claimLostImage, "photo", "", "Your photo of the lost item (required)")
	claimCmd.MarkFlagRequired("report")
	claimCmd.MarkFlagRequired("photo")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	form := submitForm
	if submitLocate {
		located, err := client.Autofill(ctx, client.ReportForm{},
			client.NewIPLocator(cfg.GeolocateURL, nil),
			client.NewNominatimGeocoder(cfg.NominatimURL, nil))
		if err != nil {
			log.Warn().Err(err).Msg("location autofill incomplete; enter the city manually")
		}
		form = mergeLocated(form, located)
	}
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		form = form.Apply(client.SetCoordinates(submitLat, submitLon))
	}

	res, err := apiClient().Submit(ctx, form)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFmt, res)
}

// mergeLocated fills fields the user left empty from an autofilled form.
func mergeLocated(form, located client.ReportForm) client.ReportForm {
	if form.City == "" {
		form.City = located.City
	}
	if form.LocationDesc == "" {
		form.LocationDesc = located.LocationDesc
	}
	if located.Latitude != nil && located.Longitude != nil {
		form = form.Apply(client.SetCoordinates(*located.Latitude, *located.Longitude))
	}
	return form
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := apiClient().Search(ctx, searchProduct, searchCategory, searchLocation)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFmt, res)
}

func runContact(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	contact, err := apiClient().Contact(ctx, id)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFmt, map[string]string{"contact": contact})
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := verifyReport(ctx, args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFmt, res)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := compare(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFmt, res)
}

type claimResult struct {
	ItemID       uint64         `json:"item_id" yaml:"item_id"`
	Verification *verify.Result `json:"verification" yaml:"verification"`
	Match        *match.Result  `json:"match" yaml:"match"`
	Contact      string         `json:"contact,omitempty" yaml:"contact,omitempty"`
	Message      string         `json:"message" yaml:"message"`
}

func runClaim(cmd *cobra.Command, args []string) error {
	id, err := parseItemID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := claimResult{ItemID: id}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := verifyReport(gctx, claimReport)
		out.Verification = v
		return err
	})
	g.Go(func() error {
		m, err := compare(gctx, claimLostImage, args[1])
		out.Match = m
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if !client.ContactAllowed(out.Match, out.Verification) {
		out.Message = "Contact withheld: a verified report and a High visual match are both required."
		return render(cmd.OutOrStdout(), outputFmt, out)
	}
	if out.Contact, err = apiClient().Contact(ctx, id); err != nil {
		return err
	}
	out.Message = "Claim checks passed."
	return render(cmd.OutOrStdout(), outputFmt, out)
}

func verifyReport(ctx context.Context, path string) (*verify.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	p, err := newProvider(ctx)
	if err != nil {
		return nil, err
	}
	return p.Verify(ctx, verify.Document{Image: data, MimeType: mimetype.Detect(data).String()})
}

func newProvider(ctx context.Context) (verify.Provider, error) {
	switch verifyProvider {
	case "simulated":
		seed := verifySeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return verify.NewSimulatedProvider(seed), nil
	case "gemini":
		c, err := newAIClient(ctx)
		if err != nil {
			return nil, err
		}
		return verify.NewGeminiProvider(c), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (use simulated or gemini)", verifyProvider)
	}
}

func compare(ctx context.Context, lostPath, foundRef string) (*match.Result, error) {
	lost, err := os.ReadFile(lostPath)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	found, foundType, err := loadFoundImage(ctx, foundRef)
	if err != nil {
		return nil, err
	}
	e, err := newEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	return match.Compare(ctx, e,
		match.Image{Data: lost, MimeType: mimetype.Detect(lost).String()},
		match.Image{Data: found, MimeType: foundType})
}

// loadFoundImage reads a local file when one exists at ref, otherwise fetches it from the API.
func loadFoundImage(ctx context.Context, ref string) ([]byte, string, error) {
	if data, err := os.ReadFile(ref); err == nil {
		return data, mimetype.Detect(data).String(), nil
	}
	data, ct, err := apiClient().FetchImage(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("fetch found item image: %w", err)
	}
	return data, ct, nil
}

func newEmbedder(ctx context.Context) (match.Embedder, error) {
	switch matchEmbedder {
	case "color":
		return match.ColorEmbedder{}, nil
	case "caption":
		c, err := newAIClient(ctx)
		if err != nil {
			return nil, err
		}
		return match.CaptionEmbedder{Captioner: c, Text: c, Hint: matchCategory}, nil
	default:
		return nil, fmt.Errorf("unsupported embedder %q (use color or caption)", matchEmbedder)
	}
}

func newAIClient(ctx context.Context) (*ai.Client, error) {
	return ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbedModel)
}

func parseItemID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}
