// Command digit trains and probes MNIST digit classifiers, contrasting a
// small CNN with a vision transformer.
//
// Train the transformer for ten epochs, keeping the best checkpoint:
//
//	digit -train -save-model
//
// Train the CNN with normalized inputs, then visualize what it learned:
//
//	digit -train -cnn -normalize -save-model
//	digit -cnn -restore-model out/cnn-mnist.ckpt -visualize -image digit.png
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/autodiff"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/backend/cpu"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/config"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/mnist"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/model"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/optim"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/train"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/viz"
)

type backend = *autodiff.AutodiffBackend[*cpu.Backend]

func main() {
	var (
		doTrain      = flag.Bool("train", false, "train the model")
		useCNN       = flag.Bool("cnn", false, "use the cnn model instead of the transformer")
		epochs       = flag.Int("epochs", 10, "number of epochs to train")
		batchSize    = flag.Int("batch-size", 128, "input batch size for training")
		lr           = flag.Float64("lr", 1e-3, "learning rate")
		useSGD       = flag.Bool("sgd", false, "optimize with SGD instead of Adam")
		momentum     = flag.Float64("momentum", 0.9, "SGD momentum")
		normalize    = flag.Bool("normalize", false, "normalize the input dataset")
		saveModel    = flag.Bool("save-model", false, "checkpoint the model whenever test accuracy improves")
		restoreModel = flag.String("restore-model", "", "restore and evaluate this checkpoint file")
		visualize    = flag.Bool("visualize", false, "render kernel and feature map grids")
		imagePath    = flag.String("image", "dataset/test/0_000.png", "image to visualize")
		layerNum     = flag.Int("layer-num", 0, "which layer to visualize")
		featureNum   = flag.Int("feature-num", 0, "which filter of a layer to visualize")
		dataDir      = flag.String("data", "data", "dataset directory")
		outDir       = flag.String("out", "out", "output directory for checkpoints and images")
		serveAddr    = flag.String("serve", "", "serve visualizations over HTTP on this address, e.g. :8080")
		seed         = flag.Int64("seed", 42, "random seed")
		configPath   = flag.String("config", "", "YAML config file, overridden by explicit flags")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	// Flags given on the command line beat the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "epochs":
			cfg.Epochs = *epochs
		case "batch-size":
			cfg.BatchSize = *batchSize
		case "lr":
			cfg.LR = *lr
		case "sgd":
			cfg.SGD = *useSGD
		case "momentum":
			cfg.Momentum = *momentum
		case "normalize":
			cfg.Normalize = *normalize
		case "data":
			cfg.DataDir = *dataDir
		case "out":
			cfg.OutDir = *outDir
		case "seed":
			cfg.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	b := autodiff.New(cpu.New())

	var clf model.Classifier[backend]
	var cnn *model.CNN[backend]
	if *useCNN {
		cnn = model.NewCNN[backend](b, rng)
		clf = cnn
	} else {
		clf = model.NewViT[backend](b, rng)
	}
	clf.SetTraining(false)
	fmt.Printf("model %s, backend %s\n", clf.Name(), b.Name())

	restoredTop1 := 0.0
	if *restoreModel != "" {
		top1, err := model.RestoreCheckpoint(*restoreModel, clf)
		if err != nil {
			log.Fatalf("restore: %v", err)
		}
		restoredTop1 = top1
		fmt.Printf("restored %s (top1 %.2f%%)\n", *restoreModel, top1)
	}

	switch {
	case *doTrain:
		trainSet, testSet, err := mnist.Load(cfg.DataDir, cfg.Normalize)
		if err != nil {
			log.Fatalf("load dataset: %v", err)
		}
		fmt.Printf("dataset: %d train, %d test examples\n", trainSet.Len(), testSet.Len())

		var opt optim.Optimizer[backend]
		if cfg.SGD {
			opt = optim.NewSGD(clf.Parameters(), float32(cfg.LR), float32(cfg.Momentum))
		} else {
			opt = optim.NewAdam(clf.Parameters(), float32(cfg.LR))
		}

		checkpointPath := ""
		if *saveModel {
			checkpointPath = filepath.Join(cfg.OutDir, model.CheckpointFileName(clf.Name()))
		}

		trainer := train.New(b, clf, opt)
		best, err := trainer.Fit(trainSet, testSet, cfg.Epochs, cfg.BatchSize, rng, checkpointPath, restoredTop1)
		if err != nil {
			log.Fatalf("train: %v", err)
		}
		fmt.Printf("best test top1: %.2f%%\n", best)

	case *restoreModel != "":
		_, testSet, err := mnist.Load(cfg.DataDir, cfg.Normalize)
		if err != nil {
			log.Fatalf("load dataset: %v", err)
		}
		trainer := train.New[*cpu.Backend](b, clf, nil)
		result := trainer.Evaluate(testSet.Batches(rng, cfg.BatchSize, false))
		fmt.Printf("test loss %.4f top1 %.2f%% top5 %.2f%%\n", result.Loss, result.Top1, result.Top5)
	}

	if *visualize {
		if cnn == nil {
			log.Fatalf("visualization requires the cnn model, run with -cnn")
		}
		if err := visualizeCNN(b, cnn, *imagePath, cfg, *layerNum, *featureNum, *serveAddr); err != nil {
			log.Fatalf("visualize: %v", err)
		}
	}
}

// visualizeCNN renders feature map and kernel grids for every conv layer
// of the model when run on a single image, writes them as PNGs and
// optionally serves them over HTTP.
func visualizeCNN(b backend, cnn *model.CNN[backend], imagePath string, cfg config.Config, layerNum, featureNum int, serveAddr string) error {
	raw, err := mnist.LoadImage(imagePath, cfg.Normalize)
	if err != nil {
		return err
	}

	input := tensor.FromRaw[float32](b, raw)
	logits, activations := cnn.ForwardWithActivations(input)
	fmt.Printf("predicted digit: %d\n", argmax(logits.Data()))

	if layerNum < 0 || layerNum >= len(activations) {
		return fmt.Errorf("layer %d out of range, model has %d conv layers", layerNum, len(activations))
	}

	server := viz.NewServer()
	kernels := cnn.Kernels()
	for layer, act := range activations {
		features, err := viz.FeatureMapGrid(act.Raw(), fmt.Sprintf("Feature maps at CNN layer %d", layer))
		if err != nil {
			return err
		}
		name := fmt.Sprintf("layer%d-features", layer)
		if err := viz.SavePNG(filepath.Join(cfg.OutDir, name+".png"), features); err != nil {
			return err
		}
		server.Add(name, features)

		kernel, err := viz.KernelGrid(kernels[layer].Raw(), featureNum,
			fmt.Sprintf("Kernel weights layer %d filter %d", layer, featureNum))
		if err != nil {
			return err
		}
		name = fmt.Sprintf("layer%d-kernels", layer)
		if err := viz.SavePNG(filepath.Join(cfg.OutDir, name+".png"), kernel); err != nil {
			return err
		}
		server.Add(name, kernel)
	}
	fmt.Printf("wrote visualization grids to %s\n", cfg.OutDir)

	if serveAddr != "" {
		fmt.Printf("serving visualizations on http://%s/\n", serveAddr)
		return server.ListenAndServe(serveAddr)
	}
	return nil
}

func argmax(logits []float32) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}
