package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/houzhh15/recetas/internal/messages"
	"github.com/houzhh15/recetas/internal/models"
)

func newRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recetas"},
		Short:   "食谱管理 (查询、创建、修改、删除)",
	}
	cmd.AddCommand(newRecipesListCmd())
	cmd.AddCommand(newRecipesGetCmd())
	cmd.AddCommand(newRecipesCreateCmd())
	cmd.AddCommand(newRecipesUpdateCmd())
	cmd.AddCommand(newRecipesDeleteCmd())
	return cmd
}

func newRecipesListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "列出食谱",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			filter := models.RecipeFilter{}
			filter.MyRecipes, _ = cmd.Flags().GetBool("mine")
			filter.ID, _ = cmd.Flags().GetInt64("id")
			if cmd.Flags().Changed("tipo-id") {
				tipo, _ := cmd.Flags().GetInt64("tipo-id")
				filter.Extra = url.Values{"tipoId": {strconv.FormatInt(tipo, 10)}}
			}

			recipes, err := a.client.FetchRecipes(commandContext(cmd), filter)
			if err != nil {
				return a.fail(messages.OpList, err)
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, recipes, func(w io.Writer) {
				if len(recipes.Items) == 0 {
					fmt.Fprintln(w, a.msg.Text(messages.KeyListEmpty))
					return
				}
				for _, r := range recipes.Items {
					writeRecipeSummary(w, r)
				}
			})
		},
	}
	c.Flags().Bool("mine", false, "只列出自己的食谱 (myRecipes=true)")
	c.Flags().Int64("id", 0, "按 ID 过滤")
	c.Flags().Int64("tipo-id", 0, "按分类过滤")
	return c
}

func newRecipesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "查看单个食谱",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			recipes, err := a.client.FetchRecipes(commandContext(cmd), models.RecipeFilter{ID: id})
			if err != nil {
				return a.fail(messages.OpList, err)
			}
			// 后端按 id 过滤仍返回数组，取第一项
			if len(recipes.Items) == 0 {
				return &userError{msg: a.msg.Text(messages.KeyNotFound), err: fmt.Errorf("recipe %d not found", id)}
			}
			r := recipes.Items[0]
			raw, err := recipes.RawItems()
			if err != nil {
				return fmt.Errorf("decode recipe %d: %w", id, err)
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, raw[0], func(w io.Writer) { writeRecipeDetail(w, r) })
		},
	}
}

func newRecipesCreateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "create",
		Short: "从 YAML/JSON 文件创建食谱",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			recipe, err := readRecipeFile(mustGetString(cmd, "file"))
			if err != nil {
				return err
			}
			if err := recipe.Validate(); err != nil {
				return a.fail(messages.OpCreate, err)
			}
			recipe.NumberSteps()

			res, err := a.client.CreateRecipe(commandContext(cmd), recipe)
			if err != nil {
				return a.fail(messages.OpCreate, err)
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, res, printLine(a.msg.Success(messages.OpCreate, res.Mensaje)))
		},
	}
	c.Flags().StringP("file", "f", "", "食谱文件（必选）")
	_ = c.MarkFlagRequired("file")
	return c
}

func newRecipesUpdateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "update ID",
		Short: "用 YAML/JSON 文件的内容替换食谱",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			recipe, err := readRecipeFile(mustGetString(cmd, "file"))
			if err != nil {
				return err
			}
			if err := recipe.Validate(); err != nil {
				return a.fail(messages.OpUpdate, err)
			}
			recipe.NumberSteps()

			res, err := a.client.UpdateRecipe(commandContext(cmd), id, recipe)
			if err != nil {
				return a.fail(messages.OpUpdate, err)
			}
			return printOutput(cmd.OutOrStdout(), a.cfg.Output, res, printLine(a.msg.Success(messages.OpUpdate, res.Mensaje)))
		},
	}
	c.Flags().StringP("file", "f", "", "食谱文件（必选）")
	_ = c.MarkFlagRequired("file")
	return c
}

// deleteResult 单个删除的结果
type deleteResult struct {
	ID      int64  `json:"id"`
	OK      bool   `json:"ok"`
	Mensaje string `json:"mensaje"`
	err     error
}

func newRecipesDeleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete ID...",
		Short: "删除一个或多个食谱",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			parallel, _ := cmd.Flags().GetInt("parallel")
			if parallel < 1 {
				parallel = 1
			}

			ctx := commandContext(cmd)
			results := make([]deleteResult, len(ids))
			var g errgroup.Group
			g.SetLimit(parallel)
			for i, id := range ids {
				i, id := i, id
				g.Go(func() error {
					res, err := a.client.DeleteRecipe(ctx, id)
					if err != nil {
						results[i] = deleteResult{ID: id, Mensaje: a.msg.Describe(messages.OpDelete, err), err: err}
						return nil
					}
					results[i] = deleteResult{ID: id, OK: true, Mensaje: a.msg.Success(messages.OpDelete, res.Mensaje)}
					return nil
				})
			}
			_ = g.Wait()

			if err := printOutput(cmd.OutOrStdout(), a.cfg.Output, results, func(w io.Writer) {
				for _, r := range results {
					fmt.Fprintf(w, "#%d: %s\n", r.ID, r.Mensaje)
				}
			}); err != nil {
				return err
			}

			var errs []error
			for _, r := range results {
				if r.err != nil {
					errs = append(errs, fmt.Errorf("recipe %d: %w", r.ID, r.err))
				}
			}
			if len(errs) > 0 {
				return a.fail(messages.OpDelete, errors.Join(errs...))
			}
			return nil
		},
	}
	c.Flags().Int("parallel", 4, "并发删除数")
	return c
}

// readRecipeFile 读取 YAML 或 JSON 格式的食谱
func readRecipeFile(path string) (models.Recipe, error) {
	var r models.Recipe
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read recipe file: %w", err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parse recipe file %s: %w", path, err)
	}
	return r, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id: %q", s)
	}
	return id, nil
}
