package blockmgr

import (
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3blocks/pkg/awsclient"
	"github.com/serverlessresearch/s3blocks/pkg/awscreds"
	"github.com/serverlessresearch/s3blocks/pkg/blocks"
	"github.com/serverlessresearch/s3blocks/pkg/s3bucket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type BlockManager struct {
	// Clients is the one client cache for the whole process. Everything
	// this manager builds shares it.
	Clients *awsclient.Cache[s3.S3]
	Bucket  *s3bucket.Bucket
	Logger  blocks.Logger
	Cfg     *viper.Viper
}

func NewManager(userCfg map[string]interface{}) (*BlockManager, error) {
	var err error
	mgr := &BlockManager{}

	if cfgPathRaw, ok := userCfg["config-file"]; ok {
		if cfgPath, ok := cfgPathRaw.(string); ok {
			err = mgr.initConfig(&cfgPath)
		} else {
			return nil, errors.New("option 'config-file' must be of type string")
		}
	} else {
		err = mgr.initConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if loggerRaw, ok := userCfg["logger"]; ok {
		if logger, ok := loggerRaw.(blocks.Logger); ok {
			mgr.Logger = logger
		} else {
			return nil, errors.New("option 'logger' must satisfy blocks.Logger")
		}
	} else {
		mgr.Logger = logrus.New()
	}

	mgr.Clients = awsclient.NewCache[s3.S3](awsclient.NewS3Client,
		mgr.Logger.WithField("module", "awsclient.cache"))

	if mgr.Cfg.IsSet("bucket.name") {
		if err = mgr.initBucket(); err != nil {
			return nil, err
		}
	}

	return mgr, nil
}

// GetBucket returns the configured bucket block, or an error if the
// configuration does not name one.
func (self *BlockManager) GetBucket() (*s3bucket.Bucket, error) {
	if self.Bucket == nil {
		return nil, errors.New("No bucket in configuration (set bucket.name)")
	}
	return self.Bucket, nil
}

func (self *BlockManager) initConfig(cfgPath *string) error {
	// This is a private viper context just for s3blocks (so as not to
	// conflict with the importer's usage).
	self.Cfg = viper.New()

	self.Cfg.SetDefault("bucket.credentials", "aws")

	// Order of precedence: ENV, blocks.yaml
	self.Cfg.BindEnv("credentials.aws.region", "AWS_DEFAULT_REGION")
	self.Cfg.BindEnv("credentials.aws.profile", "AWS_PROFILE")
	self.Cfg.BindEnv("bucket.name", "S3BLOCKS_BUCKET")

	if cfgPath != nil {
		path, err := homedir.Expand(*cfgPath)
		if err != nil {
			return errors.Wrap(err, "Failed to expand config path")
		}
		self.Cfg.SetConfigFile(path)
	} else {
		// default search path for config is ./configs/blocks.* then
		// ~/.s3blocks/blocks.* (* can be json, yaml, etc)
		self.Cfg.AddConfigPath("./configs")
		if home, err := homedir.Dir(); err == nil {
			self.Cfg.AddConfigPath(filepath.Join(home, ".s3blocks"))
		}
		self.Cfg.SetConfigName("blocks")
	}

	if err := self.Cfg.ReadInConfig(); err != nil {
		// Without an explicit path a missing file just means "use defaults
		// and the environment".
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && cfgPath == nil {
			return nil
		}
		return errors.Wrap(err, "Failed to load config")
	}
	return nil
}

func (self *BlockManager) initBucket() error {
	cfg := s3bucket.Config{
		Name:     self.Cfg.GetString("bucket.name"),
		Basepath: self.Cfg.GetString("bucket.basepath"),
	}

	params := self.clientParameters()
	credsName := self.Cfg.GetString("bucket.credentials")
	switch credsName {
	case "aws":
		cfg.AWS = &awscreds.AWSCredentials{
			AccessKeyID:      self.Cfg.GetString("credentials.aws.accessKeyId"),
			SecretAccessKey:  self.Cfg.GetString("credentials.aws.secretAccessKey"),
			SessionToken:     self.Cfg.GetString("credentials.aws.sessionToken"),
			Profile:          self.Cfg.GetString("credentials.aws.profile"),
			Region:           self.Cfg.GetString("credentials.aws.region"),
			ClientParameters: params,
		}
	case "minio":
		cfg.MinIO = &awscreds.MinIOCredentials{
			RootUser:         self.Cfg.GetString("credentials.minio.rootUser"),
			RootPassword:     self.Cfg.GetString("credentials.minio.rootPassword"),
			Region:           self.Cfg.GetString("credentials.minio.region"),
			ClientParameters: params,
		}
	default:
		return errors.New("Unrecognized credentials type: " + credsName)
	}

	bucket, err := s3bucket.New(cfg, self.Clients, self.Logger.WithField("module", "s3bucket"))
	if err != nil {
		return errors.Wrap(err, "Failed to initialize bucket "+cfg.Name)
	}
	self.Bucket = bucket
	return nil
}

func (self *BlockManager) clientParameters() awscreds.ClientParameters {
	params := awscreds.ClientParameters{
		EndpointURL: self.Cfg.GetString("clientParameters.endpointUrl"),
		CABundle:    self.Cfg.GetString("clientParameters.caBundle"),
	}
	if self.Cfg.IsSet("clientParameters.useSsl") {
		params.UseSSL = aws.Bool(self.Cfg.GetBool("clientParameters.useSsl"))
	}
	if self.Cfg.IsSet("clientParameters.verify") {
		params.Verify = aws.Bool(self.Cfg.GetBool("clientParameters.verify"))
	}
	if self.Cfg.IsSet("clientParameters.forcePathStyle") {
		params.ForcePathStyle = aws.Bool(self.Cfg.GetBool("clientParameters.forcePathStyle"))
	}
	if self.Cfg.IsSet("clientParameters.maxRetries") {
		params.MaxRetries = aws.Int(self.Cfg.GetInt("clientParameters.maxRetries"))
	}
	return params
}
